package stubapi

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	ProductID string
	UserID    string
	Content   string
	Rate      int
	Image     string
	Size      string
}

// UpdateReviewInput holds the editable fields of a review.
type UpdateReviewInput struct {
	ReviewID string
	UserID   string
	Content  string
	Rate     int
	Image    string
}

// service implements the storefront rules on top of the in-memory data.
type service struct {
	data   *memory
	now    func() time.Time
	logger *slog.Logger
}

func (s *service) getProduct(id string) (domain.Product, error) {
	p, ok := s.data.product(id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return p, nil
}

func (s *service) createProduct(ctx context.Context, userID string, in domain.NewProduct) (*domain.Product, error) {
	u, ok := s.data.user(userID)
	if !ok {
		return nil, apperrors.Unauthorized("unknown user")
	}
	if !u.Admin {
		return nil, apperrors.Forbidden("only admins can add products")
	}

	in = in.Normalized()
	p := domain.Product{
		ID:          uuid.New().String(),
		SKU:         strings.TrimSpace(in.SKU),
		Name:        strings.TrimSpace(in.Name),
		Image:       in.Image,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		Stock:       in.Stock,
		Status:      in.Status,
		CreatedAt:   s.now().UTC(),
	}

	err := s.data.update(func(m *memory) error {
		for _, existing := range m.products {
			if strings.EqualFold(existing.SKU, p.SKU) {
				return apperrors.Conflict("sku " + p.SKU + " already exists")
			}
		}
		m.products[p.ID] = p
		m.order = append(m.order, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", p.ID),
		slog.String("sku", p.SKU),
		slog.String("user_id", userID),
	)
	return &p, nil
}

func (s *service) createReview(ctx context.Context, in CreateReviewInput) (*domain.Review, error) {
	if !domain.ValidRate(in.Rate) {
		return nil, apperrors.InvalidInput("rate must be between 0 and 5")
	}
	product, err := s.getProduct(in.ProductID)
	if err != nil {
		return nil, err
	}
	author, ok := s.data.user(in.UserID)
	if !ok {
		return nil, apperrors.Unauthorized("unknown user")
	}

	size := domain.NormalizeSize(in.Size)
	now := s.now().UTC()
	review := domain.Review{
		ID:        uuid.New().String(),
		Content:   strings.TrimSpace(in.Content),
		Rate:      in.Rate,
		Image:     in.Image,
		Author:    domain.Author{ID: author.ID, Name: author.Name},
		Item:      domain.PurchaseItem{Product: domain.ProductRef{ID: product.ID, Name: product.Name}, Size: size},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.data.update(func(m *memory) error {
		if !domain.ContainsSize(m.purchases[in.UserID][in.ProductID], size) {
			return apperrors.Forbidden("you have not purchased this product in size " + domain.DisplaySize(size))
		}
		for _, r := range m.reviews {
			if r.Author.ID == in.UserID && r.ProductID() == in.ProductID && r.Item.Size == size {
				return apperrors.Conflict("you have already reviewed this item")
			}
		}
		m.reviews[review.ID] = review
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", in.ProductID),
		slog.String("user_id", in.UserID),
		slog.Int("rate", review.Rate),
	)
	return &review, nil
}

func (s *service) updateReview(ctx context.Context, in UpdateReviewInput) (*domain.Review, error) {
	if !domain.ValidRate(in.Rate) {
		return nil, apperrors.InvalidInput("rate must be between 0 and 5")
	}

	var updated domain.Review
	err := s.data.update(func(m *memory) error {
		r, ok := m.reviews[in.ReviewID]
		if !ok {
			return apperrors.NotFound("review", in.ReviewID)
		}
		if !r.OwnedBy(in.UserID) {
			return apperrors.Forbidden("only the author can edit this review")
		}
		r.Content = strings.TrimSpace(in.Content)
		r.Rate = in.Rate
		r.Image = in.Image
		r.UpdatedAt = s.now().UTC()
		m.reviews[r.ID] = r
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", updated.ID),
		slog.String("user_id", in.UserID),
	)
	return &updated, nil
}

func (s *service) deleteReview(ctx context.Context, reviewID, userID string) error {
	err := s.data.update(func(m *memory) error {
		r, ok := m.reviews[reviewID]
		if !ok {
			return apperrors.NotFound("review", reviewID)
		}
		if !r.OwnedBy(userID) {
			return apperrors.Forbidden("only the author can delete this review")
		}
		delete(m.reviews, reviewID)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", reviewID),
		slog.String("user_id", userID),
	)
	return nil
}

func (s *service) purchasedSizes(userID, productID string) ([]string, error) {
	if _, err := s.getProduct(productID); err != nil {
		return nil, err
	}
	return s.data.purchasedSizes(userID, productID), nil
}

func (s *service) addToCart(ctx context.Context, userID string, item domain.CartItemRequest) error {
	product, err := s.getProduct(item.ProductID)
	if err != nil {
		return err
	}
	item.Size = domain.NormalizeSize(item.Size)
	if item.Qty <= 0 {
		item.Qty = 1
	}

	inStock := 0
	for size, n := range product.Stock {
		if domain.NormalizeSize(size) == item.Size {
			inStock = n
		}
	}
	if inStock < item.Qty {
		return apperrors.Conflict("size " + domain.DisplaySize(item.Size) + " is out of stock")
	}

	_ = s.data.update(func(m *memory) error {
		for i, existing := range m.carts[userID] {
			if existing.ProductID == item.ProductID && existing.Size == item.Size {
				m.carts[userID][i].Qty += item.Qty
				return nil
			}
		}
		m.carts[userID] = append(m.carts[userID], item)
		return nil
	})

	s.logger.InfoContext(ctx, "cart item added",
		slog.String("product_id", item.ProductID),
		slog.String("size", item.Size),
		slog.String("user_id", userID),
	)
	return nil
}
