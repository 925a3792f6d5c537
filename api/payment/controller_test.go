package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jewelry/api/response"
	"jewelry/application/order"
	paymentapp "jewelry/application/payment"
	domainorder "jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/shared"
	"jewelry/infrastructure/persistence/mocks"
	"jewelry/pkg/hashid"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct{}

func (stubGateway) Name() string { return "stub" }

func (stubGateway) CreateInvoice(context.Context, paymentapp.InvoiceRequest) (*paymentapp.Invoice, error) {
	return &paymentapp.Invoice{Ref: "inv-42", QR: "qr"}, nil
}

type stubWebhooks struct {
	intentID string
	ok       bool
	err      error
}

func (s stubWebhooks) ParseWebhook([]byte, string) (string, bool, error) {
	return s.intentID, s.ok, s.err
}

type fixture struct {
	engine *gin.Engine
	store  *mocks.Store
	placed *order.PlaceOrderResponse
}

func newFixture(t *testing.T, webhooks WebhookVerifier) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := mocks.NewStore()
	store.AddProduct(product.ReconstructionDTO{ID: 1, Name: "Silver Ring", Price: decimal.NewFromInt(120000), Stock: 5})

	orders := mocks.NewOrderRepository(store)
	products := mocks.NewProductRepository(store)
	factory := mocks.NewUnitOfWorkFactory(store, shared.NewEventBus())
	codec := hashid.NewCodec("test-secret")

	creation := order.NewCreationService(orders, products, factory, codec, order.CreationConfig{Currency: "MNT"})
	lookup := order.NewLookupService(orders, codec)
	transition := order.NewTransitionService(orders, products, factory, domainorder.PermissiveTransitions(), codec)
	payments := paymentapp.NewService(orders, lookup, transition, factory, stubGateway{})

	placed, err := creation.PlaceOrder(context.Background(), order.Viewer{}, order.CreateOrderRequest{
		Form: order.CustomerForm{
			CustomerName: "Bat", LastName: "Erdene", Phone: "99112233",
			Address: "Peace Ave 1", District: "Sukhbaatar", City: "Ulaanbaatar", Email: "bat@example.com",
		},
		Items: []order.CartItem{{ProductID: 1, Price: decimal.NewFromInt(120000), Quantity: 2}},
	})
	require.NoError(t, err)

	engine := gin.New()
	NewController(payments, webhooks, func(c *gin.Context) { c.Next() }).RegisterRoutes(engine.Group("/api/v1"))

	return &fixture{engine: engine, store: store, placed: placed}
}

func (f *fixture) post(t *testing.T, path, body string) (int, response.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (f *fixture) invoice(t *testing.T) {
	t.Helper()
	body := `{"orderId":"` + f.placed.OrderID + `","guestToken":"` + f.placed.GuestToken + `"}`
	status, resp := f.post(t, "/api/v1/payments/invoice", body)
	require.Equal(t, http.StatusCreated, status, resp.Message)
}

func TestCreateInvoiceEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	status, resp := f.post(t, "/api/v1/payments/invoice", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Success)

	status, resp = f.post(t, "/api/v1/payments/invoice", `{"orderId":"`+f.placed.OrderID+`"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ORDER_NOT_FOUND", resp.Error)

	f.invoice(t)
}

func TestQPayCallback(t *testing.T) {
	f := newFixture(t, nil)
	f.invoice(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing fields", `{"invoice_id":"inv-42"}`, http.StatusBadRequest},
		{"unknown invoice", `{"invoice_id":"inv-nope","payment_status":"PAID"}`, http.StatusNotFound},
		{"not paid yet", `{"invoice_id":"inv-42","payment_status":"NEW"}`, http.StatusOK},
		{"paid", `{"invoice_id":"inv-42","payment_status":"PAID"}`, http.StatusOK},
		{"paid again", `{"invoice_id":"inv-42","payment_status":"PAID"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := f.post(t, "/api/v1/payments/qpay/callback", tt.body)
			assert.Equal(t, tt.status, status)
		})
	}

	stock, ok := f.store.Stock(1)
	require.True(t, ok)
	assert.Equal(t, 3, stock, "stock is taken once")
}

func TestStripeWebhook(t *testing.T) {
	t.Run("route absent without stripe", func(t *testing.T) {
		f := newFixture(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/stripe/webhook", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		f := newFixture(t, stubWebhooks{err: errors.New("invalid stripe signature")})
		status, _ := f.post(t, "/api/v1/payments/stripe/webhook", `{}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("other event", func(t *testing.T) {
		f := newFixture(t, stubWebhooks{})
		status, resp := f.post(t, "/api/v1/payments/stripe/webhook", `{}`)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Event ignored", resp.Message)
	})

	t.Run("succeeded intent pays the order", func(t *testing.T) {
		f := newFixture(t, stubWebhooks{intentID: "inv-42", ok: true})
		f.invoice(t)

		status, _ := f.post(t, "/api/v1/payments/stripe/webhook", `{}`)
		assert.Equal(t, http.StatusOK, status)

		stock, _ := f.store.Stock(1)
		assert.Equal(t, 3, stock)
	})
}
