package order

import (
	"jewelry/domain/order"
	"jewelry/domain/shared"
	"jewelry/pkg/hashid"
)

func toCustomer(f CustomerForm) order.Customer {
	return order.Customer{
		FirstName: f.CustomerName,
		LastName:  f.LastName,
		Phone:     f.Phone,
		Email:     f.Email,
		Address:   f.Address,
		District:  f.District,
		City:      f.City,
	}
}

func toLineDrafts(items []CartItem, names map[int64]string, currency string) []order.LineDraft {
	lines := make([]order.LineDraft, len(items))
	for i, item := range items {
		lines[i] = order.LineDraft{
			ProductID:   item.ProductID,
			ProductName: names[item.ProductID],
			Quantity:    item.Quantity,
			UnitPrice:   shared.NewMoney(item.Price, currency),
		}
	}
	return lines
}

// ToOrderResponse renders an order with its display token.
func ToOrderResponse(o *order.Order, codec *hashid.Codec) *OrderResponse {
	lines := o.Lines()
	items := make([]OrderItemResponse, len(lines))
	for i, l := range lines {
		items[i] = OrderItemResponse{
			ProductID:   l.ProductID(),
			ProductName: l.ProductName(),
			Quantity:    l.Quantity(),
			Price:       l.UnitPrice().Amount(),
			Subtotal:    l.Subtotal().Amount(),
		}
	}

	c := o.Customer()
	return &OrderResponse{
		ID:           o.ID(),
		HashedID:     codec.Encode(o.ID()),
		CustomerName: c.FirstName,
		LastName:     c.LastName,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		District:     c.District,
		City:         c.City,
		Total:        o.Total().Amount(),
		Currency:     o.Total().Currency(),
		Status:       o.Status().String(),
		Guest:        o.IsGuestOrder(),
		InvoiceRef:   o.InvoiceRef(),
		InvoiceQR:    o.InvoiceQR(),
		Items:        items,
		CreatedAt:    o.CreatedAt(),
		UpdatedAt:    o.UpdatedAt(),
	}
}

func ToOrderResponses(orders []*order.Order, codec *hashid.Codec) []*OrderResponse {
	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o, codec)
	}
	return out
}
