package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveBeforeInitIsNoop(t *testing.T) {
	if httpRequests != nil {
		t.Skip("collectors already registered")
	}
	assert.NotPanics(t, func() {
		ObserveHTTP("/api/user", http.MethodGet, 200, time.Millisecond)
		ObserveMedia("upload", nil, time.Millisecond)
		IncPushDelivery("sent")
		IncPushDropped()
	})
}

func TestCollectors(t *testing.T) {
	Init(nil)
	Init(nil)

	ObserveHTTP("/api/device/:id", http.MethodPut, 200, 10*time.Millisecond)
	ObserveHTTP("", http.MethodGet, 404, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("/api/device/:id", http.MethodPut, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", http.MethodGet, "404")))

	ObserveMedia("delete", errors.New("boom"), time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(mediaOps.WithLabelValues("delete", ResultError)))

	IncPushDelivery("")
	assert.Equal(t, 1.0, testutil.ToFloat64(pushDeliveries.WithLabelValues("unknown")))

	IncPushDropped()
	assert.Equal(t, 1.0, testutil.ToFloat64(pushDropped))

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "controlnest_http_requests_total")
}
