package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// MinRate and MaxRate bound a review's star rating, inclusive.
const (
	MinRate = 0
	MaxRate = 5
)

// Author identifies the shopper who wrote a review.
type Author struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ProductRef is the product a purchased item belongs to.
type ProductRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts a populated author object or a bare user id.
func (a *Author) UnmarshalJSON(b []byte) error {
	type plain Author
	return unmarshalRef(b, &a.ID, (*plain)(a))
}

// UnmarshalJSON accepts a populated product object or a bare product id.
func (p *ProductRef) UnmarshalJSON(b []byte) error {
	type plain ProductRef
	return unmarshalRef(b, &p.ID, (*plain)(p))
}

// unmarshalRef decodes a reference that the API sends either as an id
// string or as the referenced document.
func unmarshalRef(b []byte, id *string, doc any) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, id)
	}
	return json.Unmarshal(b, doc)
}

// PurchaseItem is the purchased product and size a review is attached to.
type PurchaseItem struct {
	Product ProductRef `json:"productId"`
	Size    string     `json:"size"`
}

// Review is a shopper's review of a purchased item. Author, Item and ID are
// fixed at creation; only Content, Rate and Image change on edit.
type Review struct {
	ID        string       `json:"_id"`
	Content   string       `json:"content"`
	Rate      int          `json:"rate"`
	Image     string       `json:"image"`
	Author    Author       `json:"userId"`
	Item      PurchaseItem `json:"item"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ProductID returns the id of the product the review belongs to.
func (r *Review) ProductID() string {
	return r.Item.Product.ID
}

// OwnedBy reports whether userID wrote the review.
func (r *Review) OwnedBy(userID string) bool {
	return userID != "" && r.Author.ID == userID
}

// ValidRate reports whether rate lies within [MinRate, MaxRate].
func ValidRate(rate int) bool {
	return rate >= MinRate && rate <= MaxRate
}
