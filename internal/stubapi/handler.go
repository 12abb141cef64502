package stubapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// --- Request DTOs ---

// CreateReviewRequest is the JSON body of POST /review/{id}, id being the product.
type CreateReviewRequest struct {
	Content string `json:"content" validate:"notblank,max=2000"`
	Rate    int    `json:"rate" validate:"gte=0,lte=5"`
	Image   string `json:"image" validate:"omitempty,max=2048"`
	Size    string `json:"size" validate:"required,size"`
}

// UpdateReviewRequest is the JSON body of PUT /review/{id}.
type UpdateReviewRequest struct {
	Content string `json:"content" validate:"notblank,max=2000"`
	Rate    int    `json:"rate" validate:"gte=0,lte=5"`
	Image   string `json:"image" validate:"omitempty,max=2048"`
}

// AddToCartRequest is the JSON body of POST /cart.
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required,size"`
	Qty       int    `json:"qty" validate:"gte=0,lte=99"`
}

// TokenRequest is the JSON body of POST /auth/token.
type TokenRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type handler struct {
	svc    *service
	issue  func(userID string) (string, error)
	logger *slog.Logger
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.svc.data.listProducts())
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.getProduct(chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req domain.NewProduct
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p, err := h.svc.createProduct(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, p)
}

func (h *handler) listReviews(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.svc.data.reviewsFor(chi.URLParam(r, "id")))
}

func (h *handler) createReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.svc.createReview(r.Context(), CreateReviewInput{
		ProductID: chi.URLParam(r, "id"),
		UserID:    middleware.UserIDFromContext(r.Context()),
		Content:   req.Content,
		Rate:      req.Rate,
		Image:     req.Image,
		Size:      req.Size,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, review)
}

func (h *handler) updateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.svc.updateReview(r.Context(), UpdateReviewInput{
		ReviewID: chi.URLParam(r, "id"),
		UserID:   middleware.UserIDFromContext(r.Context()),
		Content:  req.Content,
		Rate:     req.Rate,
		Image:    req.Image,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, review)
}

func (h *handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "id")
	if err := h.svc.deleteReview(r.Context(), reviewID, middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"_id": reviewID})
}

// purchasedSizes answers with an array, or with an index-keyed object when
// objectSizes is set, since the real API has used both shapes.
func (h *handler) purchasedSizes(objectSizes bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sizes, err := h.svc.purchasedSizes(middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "productId"))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		if !objectSizes {
			httputil.WriteData(w, http.StatusOK, sizes)
			return
		}
		obj := make(map[string]string, len(sizes))
		for i, s := range sizes {
			obj[strconv.Itoa(i)] = s
		}
		httputil.WriteData(w, http.StatusOK, obj)
	}
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item := domain.CartItemRequest{ProductID: req.ProductID, Size: req.Size, Qty: req.Qty}
	if err := h.svc.addToCart(r.Context(), middleware.UserIDFromContext(r.Context()), item); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.svc.data.cart(middleware.UserIDFromContext(r.Context())))
}

func (h *handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	u, ok := h.svc.data.user(req.UserID)
	if !ok {
		httputil.WriteFail(w, http.StatusNotFound, "unknown user")
		return
	}
	token, err := h.issue(u.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, TokenResponse{Token: token, Name: u.Name})
}
