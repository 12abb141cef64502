package domain

import (
	"time"

	"github.com/utafrali/storefront/pkg/validator"
)

// Product is a storefront product as returned by GET /product.
type Product struct {
	ID          string         `json:"_id"`
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Image       string         `json:"image"`
	Price       int64          `json:"price"`
	Description string         `json:"description"`
	Category    []string       `json:"category"`
	Stock       map[string]int `json:"stock"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// SizeOption is one entry of the product page size picker.
type SizeOption struct {
	Size    string
	InStock bool
}

// SizeOptions lists every stocked size in apparel order, flagging the sold
// out ones so they can be shown disabled.
func (p *Product) SizeOptions() []SizeOption {
	sizes := make([]string, 0, len(p.Stock))
	for s := range p.Stock {
		sizes = append(sizes, s)
	}
	SortSizes(sizes)

	opts := make([]SizeOption, len(sizes))
	for i, s := range sizes {
		opts[i] = SizeOption{Size: NormalizeSize(s), InStock: p.Stock[s] > 0}
	}
	return opts
}

// CartItemRequest is the body of POST /cart.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

// NewProduct is the body of POST /product, sent from the admin product
// dialog. Stock is keyed by size.
type NewProduct struct {
	SKU         string         `json:"sku" validate:"notblank"`
	Name        string         `json:"name" validate:"notblank"`
	Image       string         `json:"image" validate:"omitempty,url"`
	Price       int64          `json:"price" validate:"gte=0"`
	Description string         `json:"description"`
	Category    []string       `json:"category" validate:"required,min=1,dive,notblank"`
	Stock       map[string]int `json:"stock" validate:"required,min=1,dive,keys,size,endkeys,gte=0"`
	Status      string         `json:"status" validate:"omitempty,oneof=active disabled"`
}

// Validate checks the product dialog fields before anything is sent.
func (p NewProduct) Validate() error {
	return validator.Validate(p)
}

// Normalized returns p with lower-case stock sizes and a default status.
func (p NewProduct) Normalized() NewProduct {
	stock := make(map[string]int, len(p.Stock))
	for size, qty := range p.Stock {
		stock[NormalizeSize(size)] += qty
	}
	p.Stock = stock
	if p.Status == "" {
		p.Status = "active"
	}
	return p
}
