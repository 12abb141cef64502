package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// Endpoint names used for metrics and span names.
const (
	EndpointListProducts   = "product.list"
	EndpointGetProduct     = "product.get"
	EndpointCreateProduct  = "product.create"
	EndpointListReviews    = "review.list"
	EndpointCreateReview   = "review.create"
	EndpointUpdateReview   = "review.update"
	EndpointDeleteReview   = "review.delete"
	EndpointPurchasedSizes = "order.sizes"
	EndpointAddToCart      = "cart.add"
	EndpointHealth         = "health"
)

// ListProducts fetches the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.call(ctx, EndpointListProducts, http.MethodGet, "/product", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	if err := c.call(ctx, EndpointGetProduct, http.MethodGet, "/product/"+url.PathEscape(productID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct adds a product to the catalog. As with review mutations the
// envelope status decides success and the echoed product is best-effort.
func (c *Client) CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error) {
	var raw json.RawMessage
	if err := c.call(ctx, EndpointCreateProduct, http.MethodPost, "/product", product, &raw); err != nil {
		return nil, err
	}
	var p domain.Product
	if !c.decodeEcho(ctx, EndpointCreateProduct, raw, &p) {
		return nil, nil
	}
	return &p, nil
}

// ListReviews fetches the reviews of a product.
func (c *Client) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := c.call(ctx, EndpointListReviews, http.MethodGet, "/review/"+url.PathEscape(productID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview posts a new review for a product. The envelope status alone
// decides success; the returned review is nil when data is absent or does
// not decode.
func (c *Client) CreateReview(ctx context.Context, productID string, payload domain.NewReviewPayload) (*domain.Review, error) {
	var raw json.RawMessage
	if err := c.call(ctx, EndpointCreateReview, http.MethodPost, "/review/"+url.PathEscape(productID), payload, &raw); err != nil {
		return nil, err
	}
	return c.mutatedReview(ctx, EndpointCreateReview, raw), nil
}

// UpdateReview replaces the editable fields of a review. Like CreateReview
// it succeeds on the envelope status even when data does not decode.
func (c *Client) UpdateReview(ctx context.Context, reviewID string, payload domain.ReviewEdit) (*domain.Review, error) {
	var raw json.RawMessage
	if err := c.call(ctx, EndpointUpdateReview, http.MethodPut, "/review/"+url.PathEscape(reviewID), payload, &raw); err != nil {
		return nil, err
	}
	return c.mutatedReview(ctx, EndpointUpdateReview, raw), nil
}

// mutatedReview decodes the review echoed by a mutation, or returns nil.
func (c *Client) mutatedReview(ctx context.Context, endpoint string, raw json.RawMessage) *domain.Review {
	var r domain.Review
	if !c.decodeEcho(ctx, endpoint, raw, &r) {
		return nil
	}
	return &r
}

// decodeEcho decodes the document a mutation echoes back. Callers refetch
// after a mutation, so an absent or undecodable body is logged and dropped.
func (c *Client) decodeEcho(ctx context.Context, endpoint string, raw json.RawMessage, out any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.WarnContext(ctx, "mutation response not decoded",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, reviewID string) error {
	return c.call(ctx, EndpointDeleteReview, http.MethodDelete, "/review/"+url.PathEscape(reviewID), nil, nil)
}

// PurchasedSizes fetches the sizes of productID the current shopper bought.
// The API returns either an array or an object keyed by index; object values
// are taken in document order.
func (c *Client) PurchasedSizes(ctx context.Context, productID string) ([]string, error) {
	var raw json.RawMessage
	if err := c.call(ctx, EndpointPurchasedSizes, http.MethodGet, "/order/sizes/"+url.PathEscape(productID), nil, &raw); err != nil {
		return nil, err
	}
	sizes, err := decodeSizes(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EndpointPurchasedSizes, err)
	}
	return sizes, nil
}

// AddToCart adds one item to the shopper's cart.
func (c *Client) AddToCart(ctx context.Context, item domain.CartItemRequest) error {
	return c.call(ctx, EndpointAddToCart, http.MethodPost, "/cart", item, nil)
}

// Ping reports whether the storefront API answers its health route. The
// health body is not an envelope; only the status code matters.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.sender.Send(ctx, http.MethodGet, c.baseURL+"/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", EndpointHealth, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %w", EndpointHealth, httpclient.ParseResponseError(resp))
	}
	return resp.Body.Close()
}

func decodeSizes(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var sizes []string
		if err := json.Unmarshal(trimmed, &sizes); err != nil {
			return nil, fmt.Errorf("decode sizes: %w", err)
		}
		return sizes, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("decode sizes: unexpected %s", strings.TrimSpace(string(trimmed[:1])))
	}
	var sizes []string
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode sizes: %w", err)
		}
		var size string
		if err := dec.Decode(&size); err != nil {
			return nil, fmt.Errorf("decode sizes: %w", err)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}
