package stubapi

import (
	"sort"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// memory is the stub's in-memory data set. All access goes through its lock.
type memory struct {
	mu        sync.RWMutex
	users     map[string]User
	products  map[string]domain.Product
	order     []string
	reviews   map[string]domain.Review
	purchases map[string]map[string][]string
	carts     map[string][]domain.CartItemRequest
}

func newMemory(seed Seed) *memory {
	m := &memory{
		users:     make(map[string]User, len(seed.Users)),
		products:  make(map[string]domain.Product, len(seed.Products)),
		reviews:   make(map[string]domain.Review, len(seed.Reviews)),
		purchases: make(map[string]map[string][]string),
		carts:     make(map[string][]domain.CartItemRequest),
	}
	for _, u := range seed.Users {
		m.users[u.ID] = u
	}
	for _, p := range seed.Products {
		m.products[p.ID] = p
		m.order = append(m.order, p.ID)
	}
	for _, p := range seed.Purchases {
		if m.purchases[p.UserID] == nil {
			m.purchases[p.UserID] = make(map[string][]string)
		}
		m.purchases[p.UserID][p.ProductID] = domain.EligibleSizes(append(m.purchases[p.UserID][p.ProductID], p.Sizes...))
	}
	for _, r := range seed.Reviews {
		m.reviews[r.ID] = r
	}
	return m
}

func (m *memory) user(id string) (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok
}

func (m *memory) listProducts() []domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.products[id])
	}
	return out
}

func (m *memory) product(id string) (domain.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	return p, ok
}

// reviewsFor returns the reviews of a product, newest first.
func (m *memory) reviewsFor(productID string) []domain.Review {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Review, 0)
	for _, r := range m.reviews {
		if r.ProductID() == productID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *memory) review(id string) (domain.Review, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reviews[id]
	return r, ok
}

func (m *memory) purchasedSizes(userID, productID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.purchases[userID][productID]...)
}

func (m *memory) cart(userID string) []domain.CartItemRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.CartItemRequest(nil), m.carts[userID]...)
}

// update runs fn under the write lock.
func (m *memory) update(fn func(m *memory) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}
