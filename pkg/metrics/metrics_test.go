package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.OrderPlaced(true)
	m.OrderPlaced(true)
	m.OrderPlaced(false)
	m.StatusChanged("PENDING", "PAID", true)
	m.StatusChanged("PAID", "PAID", false)
	m.InvoiceCreated("qpay")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersPlaced.WithLabelValues("guest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersPlaced.WithLabelValues("account")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StockDecrements))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues("PAID", "PAID")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invoices.WithLabelValues("qpay")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("/api/v1/orders", http.MethodPost, http.StatusCreated, 12)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `jewelry_http_requests_total{handler="/api/v1/orders",method="POST",status="201"} 1`), body)
}
