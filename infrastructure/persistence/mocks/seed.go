package mocks

import (
	"github.com/shopspring/decimal"

	"jewelry/domain/product"
	"jewelry/domain/shared"
	"jewelry/domain/user"
)

// DemoAdminID is the seeded administrator account.
const DemoAdminID int64 = 1

// SeedDemo fills an empty store with a small catalogue and two accounts so
// the mock-backed service is usable out of the box.
func SeedDemo(s *Store) {
	catalogue := []struct {
		name  string
		price int64
		stock int
	}{
		{"Silver Ring", 120000, 10},
		{"Gold Necklace", 850000, 3},
		{"Pearl Earrings", 230000, 8},
		{"Jade Bracelet", 410000, 5},
	}
	for i, p := range catalogue {
		s.AddProduct(product.ReconstructionDTO{
			ID:       int64(i + 1),
			Name:     p.name,
			Price:    decimal.NewFromInt(p.price),
			Currency: shared.DefaultCurrency,
			Stock:    p.stock,
		})
	}

	s.AddUser(user.ReconstructionDTO{ID: DemoAdminID, Name: "Admin", Email: "admin@example.com", Role: string(user.RoleAdmin)})
	s.AddUser(user.ReconstructionDTO{ID: 2, Name: "Customer", Email: "customer@example.com", Role: string(user.RoleUser)})
}
