package payment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jewelry/application/order"
	domainorder "jewelry/domain/order"
	"jewelry/domain/shared"
	apperrors "jewelry/pkg/errors"
	"jewelry/pkg/logger"
)

type InvoiceResponse struct {
	OrderID      string `json:"orderId"`
	Provider     string `json:"provider"`
	InvoiceID    string `json:"invoiceId"`
	QRText       string `json:"qrText,omitempty"`
	PaymentURL   string `json:"paymentUrl,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// Metrics receives invoice counts.
type Metrics interface {
	InvoiceCreated(provider string)
}

type Service struct {
	orders     domainorder.Repository
	lookup     *order.LookupService
	transition *order.TransitionService
	uowFactory shared.UnitOfWorkFactory
	gateway    Gateway
	checker    Checker
	metrics    Metrics
}

func NewService(
	orders domainorder.Repository,
	lookup *order.LookupService,
	transition *order.TransitionService,
	uowFactory shared.UnitOfWorkFactory,
	gateway Gateway,
) *Service {
	return &Service{
		orders:     orders,
		lookup:     lookup,
		transition: transition,
		uowFactory: uowFactory,
		gateway:    gateway,
	}
}

// WithChecker makes ConfirmPaid ask the provider before trusting a callback.
func (s *Service) WithChecker(c Checker) *Service {
	s.checker = c
	return s
}

func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) Provider() string {
	if s.gateway == nil {
		return ""
	}
	return s.gateway.Name()
}

// CreateInvoice requests an invoice for a PENDING order the viewer may see.
// An order that already has an invoice gets it back instead of a new one.
func (s *Service) CreateInvoice(ctx context.Context, viewer order.Viewer, token, guestToken string) (*InvoiceResponse, error) {
	if s.gateway == nil {
		return nil, apperrors.New(apperrors.CodePaymentFailed, "payments are not configured")
	}

	o, err := s.lookup.GetForDisplay(ctx, token, guestToken)
	if err != nil {
		return nil, err
	}
	if !order.CanView(viewer, o) {
		return nil, domainorder.NewAccessDeniedError(o.ID())
	}
	if err := o.CheckPayable(); err != nil {
		return nil, err
	}

	if o.InvoiceRef() != "" {
		return &InvoiceResponse{
			OrderID:   token,
			Provider:  s.gateway.Name(),
			InvoiceID: o.InvoiceRef(),
			QRText:    o.InvoiceQR(),
		}, nil
	}

	inv, err := s.gateway.CreateInvoice(ctx, InvoiceRequest{
		OrderID:     o.ID(),
		Reference:   fmt.Sprintf("ORDER_%d", o.ID()),
		Amount:      o.Total().Amount(),
		Currency:    o.Total().Currency(),
		Phone:       o.Customer().Phone,
		Description: fmt.Sprintf("Захиалга #%d", o.ID()),
	})
	if err != nil {
		logger.FromContext(ctx).Error("Invoice request failed",
			zap.String("provider", s.gateway.Name()),
			zap.Int64("order_id", o.ID()),
			zap.Error(err),
		)
		return nil, apperrors.Wrap(err, apperrors.CodePaymentFailed, "payment provider is unavailable")
	}

	// The checks above ran without a lock. A concurrent request may have
	// attached its own invoice since, and that one wins.
	var existing *InvoiceResponse
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		locked, err := s.orders.FindByIDForUpdate(ctx, o.ID())
		if err != nil {
			return err
		}
		if err := locked.CheckPayable(); err != nil {
			return err
		}
		if locked.InvoiceRef() != "" {
			existing = &InvoiceResponse{
				OrderID:   token,
				Provider:  s.gateway.Name(),
				InvoiceID: locked.InvoiceRef(),
				QRText:    locked.InvoiceQR(),
			}
			return nil
		}
		locked.AttachInvoice(inv.Ref, inv.QR)
		if err := s.orders.AttachInvoice(ctx, locked.ID(), inv.Ref, inv.QR); err != nil {
			return err
		}
		uow.RegisterDirty(locked)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.FromContext(ctx).Warn("Invoice discarded, order already has one",
			zap.String("provider", s.gateway.Name()),
			zap.Int64("order_id", o.ID()),
			zap.String("discarded_invoice_id", inv.Ref),
			zap.String("invoice_id", existing.InvoiceID),
		)
		return existing, nil
	}

	logger.FromContext(ctx).Info("Invoice created",
		zap.String("provider", s.gateway.Name()),
		zap.Int64("order_id", o.ID()),
		zap.String("invoice_id", inv.Ref),
	)
	if s.metrics != nil {
		s.metrics.InvoiceCreated(s.gateway.Name())
	}

	return &InvoiceResponse{
		OrderID:      token,
		Provider:     s.gateway.Name(),
		InvoiceID:    inv.Ref,
		QRText:       inv.QR,
		PaymentURL:   inv.PaymentURL,
		ClientSecret: inv.ClientSecret,
	}, nil
}

// ConfirmPaid marks the order behind invoiceRef as PAID through the regular
// transition, so a repeated confirmation never takes stock twice.
func (s *Service) ConfirmPaid(ctx context.Context, invoiceRef string) (*order.OrderResponse, error) {
	o, err := s.orders.FindByInvoiceRef(ctx, invoiceRef)
	if err != nil {
		return nil, err
	}

	if s.checker != nil {
		paid, err := s.checker.IsPaid(ctx, invoiceRef)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodePaymentFailed, "could not verify payment")
		}
		if !paid {
			logger.FromContext(ctx).Warn("Payment callback not confirmed by provider",
				zap.String("invoice_id", invoiceRef),
				zap.Int64("order_id", o.ID()),
			)
			return nil, apperrors.New(apperrors.CodePaymentFailed, "payment not confirmed")
		}
	}

	return s.transition.Transition(ctx, o.ID(), domainorder.StatusPaid.String())
}
