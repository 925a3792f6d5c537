// Package mocks is the in-memory persistence used by tests and by the
// service when database.type is "mock". All repositories share one Store;
// the unit of work serialises transactions on it and rolls back by
// restoring a snapshot.
package mocks

import (
	"maps"
	"sync"
	"time"

	"jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/user"
)

type Store struct {
	txMu sync.Mutex // held for the whole of a unit of work
	mu   sync.RWMutex

	orders      map[int64]order.ReconstructionDTO
	products    map[int64]product.ReconstructionDTO
	users       map[int64]user.ReconstructionDTO
	nextOrderID int64
}

func NewStore() *Store {
	return &Store{
		orders:      make(map[int64]order.ReconstructionDTO),
		products:    make(map[int64]product.ReconstructionDTO),
		users:       make(map[int64]user.ReconstructionDTO),
		nextOrderID: 1,
	}
}

// AddProduct inserts or replaces a product.
func (s *Store) AddProduct(dto product.ReconstructionDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[dto.ID] = dto
}

// AddUser inserts or replaces a user.
func (s *Store) AddUser(dto user.ReconstructionDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dto.CreatedAt.IsZero() {
		dto.CreatedAt = time.Now().UTC()
	}
	s.users[dto.ID] = dto
}

// Stock returns the current stock of a product, deleted or not.
func (s *Store) Stock(productID int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	return p.Stock, ok
}

type snapshot struct {
	orders      map[int64]order.ReconstructionDTO
	products    map[int64]product.ReconstructionDTO
	users       map[int64]user.ReconstructionDTO
	nextOrderID int64
}

// Records are replaced, never mutated in place, so shallow map copies are
// enough.
func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		orders:      maps.Clone(s.orders),
		products:    maps.Clone(s.products),
		users:       maps.Clone(s.users),
		nextOrderID: s.nextOrderID,
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = snap.orders
	s.products = snap.products
	s.users = snap.users
	s.nextOrderID = snap.nextOrderID
}
