package order

import "jewelry/domain/order"

// Viewer is whoever is asking. The zero value is an anonymous guest.
type Viewer struct {
	UserID int64
	Admin  bool
}

func (v Viewer) Authenticated() bool { return v.UserID > 0 }

// CanView decides access to an owned order: its owner or an admin. Guest
// orders are guarded by their guest token in LookupService instead.
func CanView(v Viewer, o *order.Order) bool {
	ownerID, owned := o.OwnerID()
	if !owned {
		return true
	}
	return v.Admin || (v.Authenticated() && v.UserID == ownerID)
}

// Metrics receives order lifecycle counts.
type Metrics interface {
	OrderPlaced(guest bool)
	StatusChanged(from, to string, decremented bool)
}

type nopMetrics struct{}

func (nopMetrics) OrderPlaced(bool)                   {}
func (nopMetrics) StatusChanged(string, string, bool) {}
