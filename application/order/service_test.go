package order

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/shared"
	"jewelry/infrastructure/persistence/mocks"
	"jewelry/pkg/hashid"
)

type fixture struct {
	store      *mocks.Store
	events     *mocks.EventRecorder
	creation   *CreationService
	transition *TransitionService
	lookup     *LookupService
	codec      *hashid.Codec
	metrics    *recordingMetrics
}

type recordingMetrics struct {
	mu      sync.Mutex
	placed  int
	changes []string
}

func (m *recordingMetrics) OrderPlaced(bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placed++
}

func (m *recordingMetrics) StatusChanged(from, to string, decremented bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, from+">"+to)
}

func newFixture(t *testing.T, policy PricePolicy, table order.TransitionTable) *fixture {
	t.Helper()

	store := mocks.NewStore()
	store.AddProduct(product.ReconstructionDTO{ID: 1, Name: "Silver Ring", Price: decimal.NewFromInt(120000), Stock: 10})
	store.AddProduct(product.ReconstructionDTO{ID: 2, Name: "Gold Necklace", Price: decimal.NewFromInt(850000), Stock: 3})

	bus := shared.NewEventBus()
	recorder := &mocks.EventRecorder{}
	require.NoError(t, bus.Subscribe("*", recorder))

	orders := mocks.NewOrderRepository(store)
	products := mocks.NewProductRepository(store)
	factory := mocks.NewUnitOfWorkFactory(store, bus)
	codec := hashid.NewCodec("test-secret")
	metrics := &recordingMetrics{}

	return &fixture{
		store:  store,
		events: recorder,
		creation: NewCreationService(orders, products, factory, codec, CreationConfig{
			Policy:    policy,
			Tolerance: decimal.NewFromInt(1),
			Currency:  "MNT",
		}).WithMetrics(metrics),
		transition: NewTransitionService(orders, products, factory, table, codec).WithMetrics(metrics),
		lookup:     NewLookupService(orders, codec),
		codec:      codec,
		metrics:    metrics,
	}
}

func validForm() CustomerForm {
	return CustomerForm{
		CustomerName: "Bat",
		LastName:     "Erdene",
		Phone:        "99112233",
		Address:      "Peace Ave 1",
		District:     "Sukhbaatar",
		City:         "Ulaanbaatar",
		Email:        "Bat@Example.com",
	}
}

func twoLineCart() []CartItem {
	return []CartItem{
		{ProductID: 1, Price: decimal.NewFromInt(100000), Quantity: 2},
		{ProductID: 2, Price: decimal.NewFromInt(850000), Quantity: 1},
	}
}

func (f *fixture) place(t *testing.T, viewer Viewer) *PlaceOrderResponse {
	t.Helper()
	resp, err := f.creation.PlaceOrder(context.Background(), viewer, CreateOrderRequest{Form: validForm(), Items: twoLineCart()})
	require.NoError(t, err)
	return resp
}

func TestPlaceOrderGuest(t *testing.T) {
	f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())

	resp := f.place(t, Viewer{})

	assert.Equal(t, f.codec.Encode(1), resp.OrderID)
	assert.NotEmpty(t, resp.GuestToken)

	got, err := f.lookup.GetForDisplay(context.Background(), resp.OrderID, resp.GuestToken)
	require.NoError(t, err)
	assert.True(t, got.Total().Amount().Equal(decimal.NewFromInt(1050000)), "submitted prices are kept")
	assert.Equal(t, "bat@example.com", got.Customer().Email)
	assert.Equal(t, "Silver Ring", got.Lines()[0].ProductName())
	assert.Equal(t, []string{order.EventOrderPlaced}, f.events.Names())
	assert.Equal(t, 1, f.metrics.placed)
}

func TestPlaceOrderOwned(t *testing.T) {
	f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())

	resp := f.place(t, Viewer{UserID: 7})
	assert.Empty(t, resp.GuestToken)

	mine, err := f.lookup.GetForOwner(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, resp.OrderID, mine[0].HashedID)
	assert.False(t, mine[0].Guest)
}

func TestPlaceOrderRejections(t *testing.T) {
	tests := []struct {
		name   string
		policy PricePolicy
		mutate func(*CreateOrderRequest)
		want   error
	}{
		{
			name:   "empty cart",
			mutate: func(r *CreateOrderRequest) { r.Items = nil },
			want:   order.ErrEmptyCart,
		},
		{
			name:   "blank phone",
			mutate: func(r *CreateOrderRequest) { r.Form.Phone = "   " },
			want:   shared.ErrInvalidInput,
		},
		{
			name:   "malformed email",
			mutate: func(r *CreateOrderRequest) { r.Form.Email = "not-an-email" },
			want:   shared.ErrInvalidInput,
		},
		{
			name:   "zero quantity",
			mutate: func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 },
			want:   order.ErrInvalidQuantity,
		},
		{
			name:   "unknown product",
			mutate: func(r *CreateOrderRequest) { r.Items[0].ProductID = 99 },
			want:   order.ErrCreationFailed,
		},
		{
			name:   "stale price under verify",
			policy: PriceVerify,
			mutate: func(r *CreateOrderRequest) {},
			want:   order.ErrPriceChanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := tt.policy
			if policy == "" {
				policy = PriceSubmitted
			}
			f := newFixture(t, policy, order.PermissiveTransitions())
			req := CreateOrderRequest{Form: validForm(), Items: twoLineCart()}
			tt.mutate(&req)

			_, err := f.creation.PlaceOrder(context.Background(), Viewer{}, req)
			require.ErrorIs(t, err, tt.want)

			n, _ := mocks.NewOrderRepository(f.store).Count(context.Background())
			assert.Zero(t, n, "nothing is written")
		})
	}
}

func TestPlaceOrderBlankFieldNamesField(t *testing.T) {
	f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())
	form := validForm()
	form.District = ""

	_, err := f.creation.PlaceOrder(context.Background(), Viewer{}, CreateOrderRequest{Form: form, Items: twoLineCart()})

	var oe *order.Error
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "district", oe.Field())
	assert.Equal(t, "district is required", oe.Message())
}

func TestTransitionToPaidDecrementsOnce(t *testing.T) {
	f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())
	f.place(t, Viewer{})
	ctx := context.Background()

	resp, err := f.transition.Transition(ctx, 1, "PAID")
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
	assert.Equal(t, "Silver Ring", resp.Items[0].ProductName)

	ring, _ := f.store.Stock(1)
	necklace, _ := f.store.Stock(2)
	assert.Equal(t, 8, ring)
	assert.Equal(t, 2, necklace)

	_, err = f.transition.Transition(ctx, 1, "PAID")
	require.NoError(t, err)
	ring, _ = f.store.Stock(1)
	assert.Equal(t, 8, ring, "PAID to PAID leaves stock alone")

	assert.Equal(t, []string{
		order.EventOrderPlaced,
		order.EventStatusChanged,
		order.EventOrderPaid,
	}, f.events.Names())
}

func TestTransitionConcurrentPaid(t *testing.T) {
	f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())
	f.place(t, Viewer{})

	g, ctx := errgroup.WithContext(context.Background())
	for range 8 {
		g.Go(func() error {
			_, err := f.transition.Transition(ctx, 1, "PAID")
			return err
		})
	}
	require.NoError(t, g.Wait())

	ring, _ := f.store.Stock(1)
	necklace, _ := f.store.Stock(2)
	assert.Equal(t, 8, ring)
	assert.Equal(t, 2, necklace)
}

func TestTransitionRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())
		f.place(t, Viewer{})
		_, err := f.transition.Transition(ctx, 1, "REFUNDED")
		assert.ErrorIs(t, err, order.ErrInvalidStatus)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())
		_, err := f.transition.Transition(ctx, 404, "PAID")
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("strict table", func(t *testing.T) {
		f := newFixture(t, PriceSubmitted, order.StrictTransitions())
		f.place(t, Viewer{})
		_, err := f.transition.Transition(ctx, 1, "SHIPPED")
		assert.ErrorIs(t, err, order.ErrIllegalTransition)
	})

	t.Run("insufficient stock rolls back", func(t *testing.T) {
		f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())
		for range 4 {
			f.place(t, Viewer{})
		}
		for id := int64(1); id <= 3; id++ {
			_, err := f.transition.Transition(ctx, id, "PAID")
			require.NoError(t, err)
		}

		_, err := f.transition.Transition(ctx, 4, "PAID")
		require.ErrorIs(t, err, product.ErrInsufficientStock)

		ring, _ := f.store.Stock(1)
		assert.Equal(t, 4, ring, "ring decrement of the failed transition is rolled back")

		o, err := mocks.NewOrderRepository(f.store).FindByID(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, o.Status())
	})
}

func TestGetForDisplay(t *testing.T) {
	f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())
	guest := f.place(t, Viewer{})
	owned := f.place(t, Viewer{UserID: 7})
	ctx := context.Background()

	_, err := f.lookup.GetForDisplay(ctx, "1-00000000", guest.GuestToken)
	assert.ErrorIs(t, err, order.ErrOrderNotFound, "forged digest")

	_, err = f.lookup.GetForDisplay(ctx, f.codec.Encode(99), "")
	assert.ErrorIs(t, err, order.ErrOrderNotFound, "valid token, no order")

	_, err = f.lookup.GetForDisplay(ctx, guest.OrderID, "wrong")
	assert.ErrorIs(t, err, order.ErrAccessDenied)

	_, err = f.lookup.Display(ctx, Viewer{UserID: 8}, owned.OrderID, "")
	assert.ErrorIs(t, err, order.ErrAccessDenied)

	resp, err := f.lookup.Display(ctx, Viewer{UserID: 8, Admin: true}, owned.OrderID, "")
	require.NoError(t, err)
	assert.Equal(t, owned.OrderID, resp.HashedID)

	resp, err = f.lookup.Display(ctx, Viewer{}, guest.OrderID, guest.GuestToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestGetByPhone(t *testing.T) {
	f := newFixture(t, PriceSubmitted, order.PermissiveTransitions())
	f.place(t, Viewer{})
	f.place(t, Viewer{})

	_, err := f.lookup.GetByPhone(context.Background(), " ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	found, err := f.lookup.GetByPhone(context.Background(), "99112233")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := f.lookup.GetByPhone(context.Background(), "80000000")
	require.NoError(t, err)
	assert.Empty(t, none)
}
