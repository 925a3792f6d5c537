package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jewelry/config"
	"jewelry/pkg/auth"
	"jewelry/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "s3cret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "jewelry", Version: "test", Env: "test"},
		Server: config.ServerConfig{Port: "0", ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{
			Type: "mock",
		},
		CORS:    config.CORSConfig{AllowOrigins: []string{"*"}},
		Orders:  config.OrdersConfig{HashSecret: "test-secret", Currency: "MNT", PricePolicy: "submitted"},
		Auth:    config.AuthConfig{JWTSecret: testJWTSecret, CookieName: "token"},
		Payment: config.PaymentConfig{Provider: "none"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	t.Cleanup(logger.Replace(zap.NewNop()))

	app, err := NewBuilder(testConfig()).WithoutLoggerInit().Build()
	require.NoError(t, err)
	return app.Handler()
}

func call(t *testing.T, h http.Handler, method, path, body, bearer string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func sign(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.NewVerifier(testJWTSecret).Sign(userID, time.Hour)
	require.NoError(t, err)
	return token
}

const checkoutBody = `{
	"form": {
		"customerName": "Bat",
		"lastName": "Dorj",
		"phone": "99112233",
		"address": "Peace avenue 1",
		"district": "Sukhbaatar",
		"city": "Ulaanbaatar",
		"email": "bat@example.com"
	},
	"items": [{"productId": 1, "price": 120000, "quantity": 2}]
}`

func TestGuestCheckoutToPaid(t *testing.T) {
	h := newTestApp(t)

	status, env := call(t, h, http.MethodPost, "/api/v1/orders", checkoutBody, "")
	require.Equal(t, http.StatusCreated, status, env.Message)

	var placed struct {
		OrderID    string `json:"orderId"`
		GuestToken string `json:"guestToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	require.NotEmpty(t, placed.OrderID)
	require.NotEmpty(t, placed.GuestToken)

	status, env = call(t, h, http.MethodGet, "/api/v1/orders/"+placed.OrderID, "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ORDER_NOT_FOUND", env.Error)

	status, env = call(t, h, http.MethodGet, "/api/v1/orders/"+placed.OrderID+"?guest="+placed.GuestToken, "", "")
	require.Equal(t, http.StatusOK, status)

	var shown struct {
		ID     int64   `json:"id"`
		Status string  `json:"status"`
		Total  float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &shown))
	assert.Equal(t, "PENDING", shown.Status)
	assert.Equal(t, float64(240000), shown.Total)

	statusPath := fmt.Sprintf("/api/v1/admin/orders/%d/status", shown.ID)

	status, _ = call(t, h, http.MethodPatch, statusPath, `{"status":"PAID"}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, h, http.MethodPatch, statusPath, `{"status":"PAID"}`, sign(t, 2))
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, h, http.MethodPatch, statusPath, `{"status":"PAID"}`, sign(t, 1))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Order status updated", env.Message)

	// A repeated PAID must not take stock again.
	status, _ = call(t, h, http.MethodPatch, statusPath, `{"status":"PAID"}`, sign(t, 1))
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, h, http.MethodPost, "/api/v1/products/stock", `{"productIds":[1]}`, "")
	require.Equal(t, http.StatusOK, status)
	var stock map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &stock))
	assert.Equal(t, 8, stock["1"])
}

func TestCheckoutRejections(t *testing.T) {
	h := newTestApp(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "empty cart",
			body:   `{"form":{"customerName":"a","lastName":"b","phone":"1","address":"c","district":"d","city":"e","email":"a@b.co"},"items":[]}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "negative price",
			body:   `{"form":{},"items":[{"productId":1,"price":-5,"quantity":1}]}`,
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
		{
			name:   "price below one cent",
			body:   strings.Replace(checkoutBody, `"price": 120000`, `"price": 0.005`, 1),
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "phone longer than stored",
			body:   strings.Replace(checkoutBody, `"99112233"`, `"`+strings.Repeat("9", 40)+`"`, 1),
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "unknown product",
			body:   strings.Replace(checkoutBody, `"productId": 1`, `"productId": 999`, 1),
			status: http.StatusInternalServerError,
			code:   "ORDER_CREATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, h, http.MethodPost, "/api/v1/orders", tt.body, "")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Error)
			assert.False(t, env.Success)
		})
	}
}

func TestTrackByPhone(t *testing.T) {
	h := newTestApp(t)

	status, _ := call(t, h, http.MethodPost, "/api/v1/orders/track", `{"phone":"99112233"}`, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, h, http.MethodPost, "/api/v1/orders", checkoutBody, "")
	require.Equal(t, http.StatusCreated, status)

	status, env := call(t, h, http.MethodPost, "/api/v1/orders/track", `{"phone":"99112233"}`, "")
	require.Equal(t, http.StatusOK, status)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	assert.Len(t, orders, 1)

	status, env = call(t, h, http.MethodPost, "/api/v1/orders/track", `{"phone":" "}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "phone is required", env.Message)
}

func TestMyOrdersRequiresLogin(t *testing.T) {
	h := newTestApp(t)

	status, env := call(t, h, http.MethodGet, "/api/v1/me/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error)

	status, _ = call(t, h, http.MethodPost, "/api/v1/orders", checkoutBody, sign(t, 2))
	require.Equal(t, http.StatusCreated, status)

	status, env = call(t, h, http.MethodGet, "/api/v1/me/orders", "", sign(t, 2))
	require.Equal(t, http.StatusOK, status)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	assert.Len(t, orders, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestApp(t)

	_, _ = call(t, h, http.MethodGet, "/api/v1/health", "", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jewelry_http_requests_total")
	assert.Contains(t, w.Body.String(), `handler="/api/v1/health"`)
}
