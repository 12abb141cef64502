package stubapi

import (
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// User is a shopper known to the stub. Admins may add products.
type User struct {
	ID    string
	Name  string
	Admin bool
}

// Purchase records that a user bought a product in the given sizes.
type Purchase struct {
	UserID    string
	ProductID string
	Sizes     []string
}

// Seed is the initial data set of a stub server.
type Seed struct {
	Users     []User
	Products  []domain.Product
	Purchases []Purchase
	Reviews   []domain.Review
}

// DefaultSeed returns a small catalog with two shoppers, one of whom has
// already reviewed a shirt, and a store admin.
func DefaultSeed() Seed {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	return Seed{
		Users: []User{
			{ID: "u-1", Name: "Mina"},
			{ID: "u-2", Name: "Jun"},
			{ID: "admin-1", Name: "Store Admin", Admin: true},
		},
		Products: []domain.Product{
			{
				ID: "p-1", SKU: "SHIRT-LN-01", Name: "Linen Shirt", Price: 39000,
				Description: "Relaxed linen shirt", Category: []string{"top", "shirt"},
				Stock: map[string]int{"s": 4, "m": 10, "l": 0}, Status: "active", CreatedAt: created,
			},
			{
				ID: "p-2", SKU: "JKT-DNM-02", Name: "Denim Jacket", Price: 89000,
				Description: "Washed denim jacket", Category: []string{"outer"},
				Stock: map[string]int{"m": 2, "xl": 1}, Status: "active", CreatedAt: created,
			},
		},
		Purchases: []Purchase{
			{UserID: "u-1", ProductID: "p-1", Sizes: []string{"M", "l"}},
			{UserID: "u-2", ProductID: "p-1", Sizes: []string{"s"}},
			{UserID: "u-2", ProductID: "p-2", Sizes: []string{"xl"}},
		},
		Reviews: []domain.Review{
			{
				ID: "r-1", Content: "Soft and breathable", Rate: 5,
				Author:    domain.Author{ID: "u-2", Name: "Jun"},
				Item:      domain.PurchaseItem{Product: domain.ProductRef{ID: "p-1", Name: "Linen Shirt"}, Size: "s"},
				CreatedAt: created, UpdatedAt: created,
			},
		},
	}
}
