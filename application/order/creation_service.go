package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/shared"
	"jewelry/pkg/hashid"
	"jewelry/pkg/logger"
)

// PricePolicy decides whose price a line gets.
type PricePolicy string

const (
	// PriceSubmitted keeps the price the storefront showed the customer.
	PriceSubmitted PricePolicy = "submitted"
	// PriceVerify rejects the order when a submitted price is more than the
	// tolerance away from the live product price.
	PriceVerify PricePolicy = "verify"
)

type CreationConfig struct {
	Policy    PricePolicy
	Tolerance decimal.Decimal
	Currency  string
}

// CreationService places orders.
type CreationService struct {
	orders        order.Repository
	products      product.Repository
	uowFactory    shared.UnitOfWorkFactory
	codec         *hashid.Codec
	config        CreationConfig
	metrics       Metrics
	newGuestToken func() string
}

func NewCreationService(
	orders order.Repository,
	products product.Repository,
	uowFactory shared.UnitOfWorkFactory,
	codec *hashid.Codec,
	config CreationConfig,
) *CreationService {
	if config.Policy == "" {
		config.Policy = PriceSubmitted
	}
	return &CreationService{
		orders:        orders,
		products:      products,
		uowFactory:    uowFactory,
		codec:         codec,
		config:        config,
		metrics:       nopMetrics{},
		newGuestToken: uuid.NewString,
	}
}

func (s *CreationService) WithMetrics(m Metrics) *CreationService {
	if m != nil {
		s.metrics = m
	}
	return s
}

// PlaceOrder validates the cart and the form, stores the order with its
// lines in one transaction and returns the display token. Anonymous
// viewers get a fresh guest token that they must present to see the order.
func (s *CreationService) PlaceOrder(ctx context.Context, viewer Viewer, req CreateOrderRequest) (*PlaceOrderResponse, error) {
	draft := order.Draft{
		Customer: toCustomer(req.Form),
		Currency: s.config.Currency,
	}
	if viewer.Authenticated() {
		draft.OwnerID = viewer.UserID
	} else {
		draft.GuestToken = s.newGuestToken()
	}

	// Validate before touching storage; names are filled in below.
	draft.Lines = toLineDrafts(req.Items, nil, s.config.Currency)
	if _, err := order.NewOrder(draft); err != nil {
		return nil, err
	}

	ids := productIDs(req.Items)
	var placed *order.Order
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		found, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		names := make(map[int64]string, len(found))
		for _, item := range req.Items {
			p, ok := found[item.ProductID]
			if !ok {
				return product.NewProductNotFoundError(item.ProductID)
			}
			if s.config.Policy == PriceVerify && p.PriceDiffers(item.Price, s.config.Tolerance) {
				return order.NewPriceChangedError(item.ProductID)
			}
			names[p.ID()] = p.Name()
		}

		d := draft
		d.Lines = toLineDrafts(req.Items, names, s.config.Currency)
		o, err := order.NewOrder(d)
		if err != nil {
			return err
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return err
		}
		uow.RegisterNew(o)
		placed = o
		return nil
	})
	if err != nil {
		if errors.Is(err, order.ErrPriceChanged) {
			return nil, err
		}
		logger.FromContext(ctx).Error("Order creation failed", zap.Error(err))
		return nil, order.NewCreationFailedError(err)
	}

	token := s.codec.Encode(placed.ID())
	logger.FromContext(ctx).Info("Order placed",
		zap.Int64("order_id", placed.ID()),
		zap.Bool("guest", placed.IsGuestOrder()),
		zap.Int("lines", len(req.Items)),
		zap.String("total", placed.Total().String()),
	)
	s.metrics.OrderPlaced(placed.IsGuestOrder())

	return &PlaceOrderResponse{OrderID: token, GuestToken: placed.GuestToken()}, nil
}

func productIDs(items []CartItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
