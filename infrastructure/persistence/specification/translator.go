// Package specification turns domain specifications into GORM scopes so the
// same filter objects work against the in-memory store and MySQL.
package specification

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"jewelry/domain/order"
	"jewelry/domain/shared"
)

var ErrUnsupportedSpecification = errors.New("specification cannot be translated to SQL")

// Scope is a GORM query modifier.
type Scope = func(*gorm.DB) *gorm.DB

type GormTranslator struct{}

func NewGormTranslator() *GormTranslator {
	return &GormTranslator{}
}

// TranslateOrder maps an order specification onto the orders table. A nil
// spec matches everything.
func (t *GormTranslator) TranslateOrder(spec shared.Specification[*order.Order]) (Scope, error) {
	if spec == nil {
		return func(db *gorm.DB) *gorm.DB { return db }, nil
	}

	switch s := spec.(type) {
	case shared.AndSpecification[*order.Order]:
		scopes := make([]Scope, 0, len(s.Specs))
		for _, part := range s.Specs {
			scope, err := t.TranslateOrder(part)
			if err != nil {
				return nil, err
			}
			scopes = append(scopes, scope)
		}
		return func(db *gorm.DB) *gorm.DB {
			for _, scope := range scopes {
				db = scope(db)
			}
			return db
		}, nil

	case order.ByStatusSpecification:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", s.Status.String())
		}, nil

	case order.ByOwnerSpecification:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("owner_id = ?", s.OwnerID)
		}, nil

	case order.ByCreatedRangeSpecification:
		return func(db *gorm.DB) *gorm.DB {
			if !s.From.IsZero() {
				db = db.Where("created_at >= ?", s.From)
			}
			if !s.To.IsZero() {
				db = db.Where("created_at < ?", s.To)
			}
			return db
		}, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedSpecification, spec)
}
