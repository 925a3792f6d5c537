package order

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/shared"
	"jewelry/pkg/hashid"
	"jewelry/pkg/logger"
)

// TransitionService changes order status. Moving an order into PAID takes
// the stock of every line, exactly once: the order row is locked for the
// whole transaction, so a concurrent second PAID sees the first one and
// skips the decrement.
type TransitionService struct {
	orders     order.Repository
	products   product.Repository
	uowFactory shared.UnitOfWorkFactory
	table      order.TransitionTable
	codec      *hashid.Codec
	metrics    Metrics
}

func NewTransitionService(
	orders order.Repository,
	products product.Repository,
	uowFactory shared.UnitOfWorkFactory,
	table order.TransitionTable,
	codec *hashid.Codec,
) *TransitionService {
	return &TransitionService{
		orders:     orders,
		products:   products,
		uowFactory: uowFactory,
		table:      table,
		codec:      codec,
		metrics:    nopMetrics{},
	}
}

func (s *TransitionService) WithMetrics(m Metrics) *TransitionService {
	if m != nil {
		s.metrics = m
	}
	return s
}

// Transition moves order orderID to status. Unknown statuses and forbidden
// edges are rejected before any write; persistence failures come back as
// order.ErrTransitionFailed.
func (s *TransitionService) Transition(ctx context.Context, orderID int64, status string) (*OrderResponse, error) {
	to, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var (
		updated *order.Order
		change  order.StatusChange
	)
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		change, err = o.ChangeStatus(to, s.table)
		if err != nil {
			return err
		}

		if change.DecrementStock {
			for _, l := range o.Lines() {
				if err := s.products.DecrementStock(ctx, l.ProductID(), l.Quantity()); err != nil {
					return err
				}
			}
		}

		if err := s.orders.UpdateStatus(ctx, o.ID(), o.Status()); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		updated = o
		return nil
	})
	if err != nil {
		if isTransitionRejection(err) {
			logger.FromContext(ctx).Info("Order transition rejected",
				zap.Int64("order_id", orderID),
				zap.String("to", to.String()),
				zap.Error(err),
			)
			return nil, err
		}
		logger.FromContext(ctx).Error("Order transition failed",
			zap.Int64("order_id", orderID),
			zap.String("to", to.String()),
			zap.Error(err),
		)
		return nil, order.NewTransitionFailedError(err)
	}

	logger.FromContext(ctx).Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", change.From.String()),
		zap.String("to", change.To.String()),
		zap.Bool("stock_decremented", change.DecrementStock),
	)
	s.metrics.StatusChanged(change.From.String(), change.To.String(), change.DecrementStock)

	return ToOrderResponse(updated, s.codec), nil
}

func isTransitionRejection(err error) bool {
	return errors.Is(err, order.ErrOrderNotFound) ||
		errors.Is(err, order.ErrInvalidStatus) ||
		errors.Is(err, order.ErrIllegalTransition) ||
		errors.Is(err, product.ErrInsufficientStock)
}
