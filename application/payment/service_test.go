package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jewelry/application/order"
	domainorder "jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/shared"
	"jewelry/infrastructure/persistence/mocks"
	apperrors "jewelry/pkg/errors"
	"jewelry/pkg/hashid"
)

type fakeGateway struct {
	calls []InvoiceRequest
	err   error
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateInvoice(_ context.Context, req InvoiceRequest) (*Invoice, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return &Invoice{Ref: "inv-1", QR: "qr-1"}, nil
}

// barrierGateway answers only once `parties` calls are in flight, each with
// a fresh invoice ref.
type barrierGateway struct {
	arrived sync.WaitGroup
	issued  atomic.Int32
}

func newBarrierGateway(parties int) *barrierGateway {
	g := &barrierGateway{}
	g.arrived.Add(parties)
	return g
}

func (g *barrierGateway) Name() string { return "fake" }

func (g *barrierGateway) CreateInvoice(_ context.Context, _ InvoiceRequest) (*Invoice, error) {
	g.arrived.Done()
	g.arrived.Wait()
	n := g.issued.Add(1)
	return &Invoice{Ref: fmt.Sprintf("inv-%d", n), QR: fmt.Sprintf("qr-%d", n)}, nil
}

type fakeChecker bool

func (c fakeChecker) IsPaid(context.Context, string) (bool, error) { return bool(c), nil }

type env struct {
	store    *mocks.Store
	service  *Service
	gateway  *fakeGateway
	placed   *order.PlaceOrderResponse
	creation *order.CreationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := mocks.NewStore()
	store.AddProduct(product.ReconstructionDTO{ID: 1, Name: "Silver Ring", Price: decimal.NewFromInt(120000), Stock: 5})

	orders := mocks.NewOrderRepository(store)
	products := mocks.NewProductRepository(store)
	factory := mocks.NewUnitOfWorkFactory(store, shared.NewEventBus())
	codec := hashid.NewCodec("test-secret")

	creation := order.NewCreationService(orders, products, factory, codec, order.CreationConfig{Currency: "MNT"})
	lookup := order.NewLookupService(orders, codec)
	transition := order.NewTransitionService(orders, products, factory, domainorder.PermissiveTransitions(), codec)
	gateway := &fakeGateway{}

	placed, err := creation.PlaceOrder(context.Background(), order.Viewer{}, order.CreateOrderRequest{
		Form: order.CustomerForm{
			CustomerName: "Bat", LastName: "Erdene", Phone: "99112233",
			Address: "Peace Ave 1", District: "Sukhbaatar", City: "Ulaanbaatar", Email: "bat@example.com",
		},
		Items: []order.CartItem{{ProductID: 1, Price: decimal.NewFromInt(120000), Quantity: 2}},
	})
	require.NoError(t, err)

	return &env{
		store:    store,
		service:  NewService(orders, lookup, transition, factory, gateway),
		gateway:  gateway,
		placed:   placed,
		creation: creation,
	}
}

func TestCreateInvoice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	resp, err := e.service.CreateInvoice(ctx, order.Viewer{}, e.placed.OrderID, e.placed.GuestToken)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", resp.InvoiceID)
	assert.Equal(t, "qr-1", resp.QRText)

	require.Len(t, e.gateway.calls, 1)
	call := e.gateway.calls[0]
	assert.Equal(t, "ORDER_1", call.Reference)
	assert.Equal(t, "99112233", call.Phone)
	assert.True(t, call.Amount.Equal(decimal.NewFromInt(240000)))

	again, err := e.service.CreateInvoice(ctx, order.Viewer{}, e.placed.OrderID, e.placed.GuestToken)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", again.InvoiceID)
	assert.Len(t, e.gateway.calls, 1, "existing invoice is reused")
}

func TestCreateInvoiceConcurrentRequestsShareOneInvoice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gateway := newBarrierGateway(2)
	e.service.gateway = gateway

	var wg sync.WaitGroup
	results := make([]*InvoiceResponse, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = e.service.CreateInvoice(ctx, order.Viewer{}, e.placed.OrderID, e.placed.GuestToken)
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(2), gateway.issued.Load(), "both requests reached the provider")
	assert.Equal(t, results[0].InvoiceID, results[1].InvoiceID)
	assert.Equal(t, results[0].QRText, results[1].QRText)

	resp, err := e.service.ConfirmPaid(ctx, results[0].InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)

	stock, _ := e.store.Stock(1)
	assert.Equal(t, 3, stock)
}

func TestCreateInvoiceRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong guest token", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.service.CreateInvoice(ctx, order.Viewer{}, e.placed.OrderID, "nope")
		assert.ErrorIs(t, err, domainorder.ErrAccessDenied)
	})

	t.Run("already paid", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.service.transition.Transition(ctx, 1, "PAID")
		require.NoError(t, err)

		_, err = e.service.CreateInvoice(ctx, order.Viewer{}, e.placed.OrderID, e.placed.GuestToken)
		assert.ErrorIs(t, err, domainorder.ErrNotPayable)
	})

	t.Run("provider down", func(t *testing.T) {
		e := newEnv(t)
		e.gateway.err = errors.New("connection refused")
		_, err := e.service.CreateInvoice(ctx, order.Viewer{}, e.placed.OrderID, e.placed.GuestToken)
		assert.True(t, apperrors.Is(err, apperrors.CodePaymentFailed))
	})
}

func TestConfirmPaid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.service.CreateInvoice(ctx, order.Viewer{}, e.placed.OrderID, e.placed.GuestToken)
	require.NoError(t, err)

	_, err = e.service.ConfirmPaid(ctx, "unknown")
	assert.ErrorIs(t, err, domainorder.ErrOrderNotFound)

	e.service.WithChecker(fakeChecker(false))
	_, err = e.service.ConfirmPaid(ctx, "inv-1")
	assert.True(t, apperrors.Is(err, apperrors.CodePaymentFailed))

	e.service.WithChecker(fakeChecker(true))
	for range 2 {
		resp, err := e.service.ConfirmPaid(ctx, "inv-1")
		require.NoError(t, err)
		assert.Equal(t, "PAID", resp.Status)
	}

	stock, _ := e.store.Stock(1)
	assert.Equal(t, 3, stock, "repeated callbacks decrement once")
}
