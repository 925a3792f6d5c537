// Package admin serves the back-office: the order list, the dashboard and
// the admin gate.
package admin

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	appOrder "jewelry/application/order"
	"jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/shared"
	"jewelry/domain/user"
	"jewelry/pkg/hashid"
)

const (
	recentOrdersLimit = 5
	topProductsLimit  = 5
)

type ListFilter struct {
	Status   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

type OrderList struct {
	Orders   []*appOrder.OrderResponse `json:"orders"`
	Total    int64                     `json:"total"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"pageSize"`
}

type TopProduct struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	OrderCount int64  `json:"orderCount"`
}

type Dashboard struct {
	TotalProducts int64                     `json:"totalProducts"`
	TotalOrders   int64                     `json:"totalOrders"`
	TotalUsers    int64                     `json:"totalUsers"`
	TotalRevenue  decimal.Decimal           `json:"totalRevenue"`
	RecentOrders  []*appOrder.OrderResponse `json:"recentOrders"`
	TopProducts   []TopProduct              `json:"topProducts"`
}

type Service struct {
	orders   order.Repository
	products product.Repository
	users    user.Repository
	codec    *hashid.Codec
}

func NewService(orders order.Repository, products product.Repository, users user.Repository, codec *hashid.Codec) *Service {
	return &Service{orders: orders, products: products, users: users, codec: codec}
}

// Authorize resolves an authenticated user into a Viewer and requires the
// ADMIN role.
func (s *Service) Authorize(ctx context.Context, userID int64) (appOrder.Viewer, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return appOrder.Viewer{}, shared.NewForbiddenError("User", "admin role required")
		}
		return appOrder.Viewer{}, err
	}
	if !u.IsAdmin() {
		return appOrder.Viewer{}, shared.NewForbiddenError("User", "admin role required")
	}
	return appOrder.Viewer{UserID: u.ID(), Admin: true}, nil
}

// IsAdmin reports whether userID holds the ADMIN role; lookup failures count
// as no.
func (s *Service) IsAdmin(ctx context.Context, userID int64) bool {
	v, err := s.Authorize(ctx, userID)
	return err == nil && v.Admin
}

func (s *Service) ListOrders(ctx context.Context, f ListFilter) (*OrderList, error) {
	var specs []shared.Specification[*order.Order]
	if f.Status != "" {
		status, err := order.ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		specs = append(specs, order.NewByStatusSpecification(status))
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
			return nil, shared.NewValidationError("Order", "from", "from must be before to")
		}
		specs = append(specs, order.NewByCreatedRangeSpecification(f.From, f.To))
	}

	var spec shared.Specification[*order.Order]
	if len(specs) > 0 {
		spec = shared.And(specs...)
	}

	page := shared.Page{Number: f.Page, Size: f.PageSize}.Normalize()
	orders, total, err := s.orders.List(ctx, spec, page)
	if err != nil {
		return nil, err
	}
	return &OrderList{
		Orders:   appOrder.ToOrderResponses(orders, s.codec),
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}

// Dashboard loads the counters concurrently, then the recent orders and
// the best sellers.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalProducts, err = s.products.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalOrders, err = s.orders.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalUsers, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalRevenue, err = s.orders.SumTotalByStatus(gctx, order.StatusPaid)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recent, _, err := s.orders.List(ctx, nil, shared.Page{Number: 1, Size: recentOrdersLimit})
	if err != nil {
		return nil, err
	}
	d.RecentOrders = appOrder.ToOrderResponses(recent, s.codec)

	sales, err := s.products.TopSelling(ctx, topProductsLimit)
	if err != nil {
		return nil, err
	}
	d.TopProducts = make([]TopProduct, len(sales))
	for i, sale := range sales {
		d.TopProducts[i] = TopProduct{ID: sale.ProductID, Name: sale.Name, OrderCount: sale.LineCount}
	}
	return d, nil
}
