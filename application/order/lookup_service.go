package order

import (
	"context"
	"crypto/subtle"
	"strings"

	"go.uber.org/zap"

	"jewelry/domain/order"
	"jewelry/pkg/hashid"
	"jewelry/pkg/logger"
)

type LookupService struct {
	orders order.Repository
	codec  *hashid.Codec
}

func NewLookupService(orders order.Repository, codec *hashid.Codec) *LookupService {
	return &LookupService{orders: orders, codec: codec}
}

func (s *LookupService) GetForOwner(ctx context.Context, ownerID int64) ([]*OrderResponse, error) {
	orders, err := s.orders.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders, s.codec), nil
}

// GetByPhone is the unauthenticated tracking lookup. Callers must rate
// limit it: anyone who knows a phone number sees its orders.
func (s *LookupService) GetByPhone(ctx context.Context, phone string) ([]*OrderResponse, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, order.NewFieldError("phone", "phone is required")
	}
	orders, err := s.orders.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders, s.codec), nil
}

// GetForDisplay resolves a display token. A forged token is
// ErrOrderNotFound; a guest order without the matching guest token is
// ErrAccessDenied. Owner checks are left to the caller (see CanView).
func (s *LookupService) GetForDisplay(ctx context.Context, token, guestToken string) (*order.Order, error) {
	id, ok := s.codec.Decode(token)
	if !ok {
		logger.FromContext(ctx).Info("Rejected order token", zap.String("token", token))
		return nil, order.NewOrderNotFoundError(0)
	}

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.IsGuestOrder() {
		if subtle.ConstantTimeCompare([]byte(o.GuestToken()), []byte(guestToken)) != 1 {
			logger.FromContext(ctx).Info("Guest token mismatch", zap.Int64("order_id", id))
			return nil, order.NewAccessDeniedError(id)
		}
	}
	return o, nil
}

// Display is GetForDisplay plus the owner check, rendered for the viewer.
func (s *LookupService) Display(ctx context.Context, viewer Viewer, token, guestToken string) (*OrderResponse, error) {
	o, err := s.GetForDisplay(ctx, token, guestToken)
	if err != nil {
		return nil, err
	}
	if !CanView(viewer, o) {
		logger.FromContext(ctx).Info("Owned order requested by another viewer",
			zap.Int64("order_id", o.ID()),
			zap.Int64("viewer_id", viewer.UserID),
		)
		return nil, order.NewAccessDeniedError(o.ID())
	}
	return ToOrderResponse(o, s.codec), nil
}
