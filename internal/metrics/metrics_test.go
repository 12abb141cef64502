package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/utafrali/storefront/internal/store"
)

func TestStoreListener(t *testing.T) {
	listen := StoreListener()
	const name = "review-metrics-test"

	listen(store.Event{Store: name, Kind: store.OpCreateReview, Phase: store.PhasePending})
	assert.Equal(t, float64(1), testutil.ToFloat64(StoreInFlight.WithLabelValues(name)))

	listen(store.Event{Store: name, Kind: store.OpCreateReview, Phase: store.PhaseFulfilled, Elapsed: 40 * time.Millisecond})
	listen(store.Event{Store: name, Kind: store.OpListReviews, Phase: store.PhasePending})
	listen(store.Event{Store: name, Kind: store.OpListReviews, Phase: store.PhaseRejected})

	assert.Equal(t, float64(0), testutil.ToFloat64(StoreInFlight.WithLabelValues(name)))
	assert.Equal(t, float64(1), testutil.ToFloat64(StoreOperations.WithLabelValues(name, "review.create", "pending")))
	assert.Equal(t, float64(1), testutil.ToFloat64(StoreOperations.WithLabelValues(name, "review.create", "fulfilled")))
	assert.Equal(t, float64(1), testutil.ToFloat64(StoreOperations.WithLabelValues(name, "review.list", "rejected")))
}

func TestObserveGateway(t *testing.T) {
	before := testutil.ToFloat64(GatewayRequests.WithLabelValues("metrics-test", "201"))
	ObserveGateway("metrics-test", 201, 10*time.Millisecond)
	ObserveGateway("metrics-test", 0, time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(GatewayRequests.WithLabelValues("metrics-test", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(GatewayRequests.WithLabelValues("metrics-test", "error")))
}
