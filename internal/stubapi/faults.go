package stubapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/utafrali/storefront/pkg/httputil"
)

// Route names accepted by Faults.
const (
	RouteListProducts   = "product.list"
	RouteGetProduct     = "product.get"
	RouteCreateProduct  = "product.create"
	RouteListReviews    = "review.list"
	RouteCreateReview   = "review.create"
	RouteUpdateReview   = "review.update"
	RouteDeleteReview   = "review.delete"
	RoutePurchasedSizes = "order.sizes"
	RouteAddToCart      = "cart.add"
)

type fault struct {
	status  int
	message string
	delay   time.Duration
	times   int // 0 means until cleared
}

// Faults injects failures and latency into stub routes for tests and demos.
type Faults struct {
	mu     sync.Mutex
	faults map[string]*fault
	hits   map[string]int
}

func newFaults() *Faults {
	return &Faults{faults: make(map[string]*fault), hits: make(map[string]int)}
}

// Fail makes route answer with a fail envelope. times limits how many
// requests fail; 0 means until Clear.
func (f *Faults) Fail(route string, status int, message string, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[route] = &fault{status: status, message: message, times: times}
}

// Delay holds every request to route for d before serving it.
func (f *Faults) Delay(route string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[route] = &fault{delay: d}
}

// Clear removes every fault.
func (f *Faults) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = make(map[string]*fault)
}

// Hits returns how many requests route has received.
func (f *Faults) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *Faults) take(route string) (fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.hits[route]++
	ft, ok := f.faults[route]
	if !ok {
		return fault{}, false
	}
	out := *ft
	if ft.times > 0 {
		ft.times--
		if ft.times == 0 {
			delete(f.faults, route)
		}
	}
	return out, true
}

// wrap applies the faults registered for route before calling next.
func (f *Faults) wrap(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ft, ok := f.take(route)
		if ok && ft.delay > 0 {
			select {
			case <-time.After(ft.delay):
			case <-r.Context().Done():
				return
			}
		}
		if ok && ft.status != 0 {
			httputil.WriteFail(w, ft.status, ft.message)
			return
		}
		next(w, r)
	}
}
