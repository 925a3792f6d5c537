package specification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"jewelry/domain/order"
	"jewelry/domain/shared"
	"jewelry/infrastructure/persistence/mysql/po"
)

type everyOther struct{}

func (everyOther) IsSatisfiedBy(ctx context.Context, o *order.Order) bool { return o.ID()%2 == 0 }

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "dry:run@tcp(localhost:3306)/jewelry",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestTranslateOrder(t *testing.T) {
	tr := NewGormTranslator()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	spec := shared.And(
		order.NewByStatusSpecification(order.StatusPaid),
		order.NewByCreatedRangeSpecification(from, time.Time{}),
	)
	scope, err := tr.TranslateOrder(spec)
	if err != nil {
		t.Fatal(err)
	}

	stmt := dryRunDB(t).Model(&po.OrderPO{}).Scopes(scope).Find(&[]po.OrderPO{}).Statement
	sql := stmt.SQL.String()
	if !strings.Contains(sql, "status = ?") || !strings.Contains(sql, "created_at >= ?") {
		t.Errorf("unexpected SQL: %s", sql)
	}
	if strings.Contains(sql, "created_at < ?") {
		t.Errorf("zero upper bound must be skipped: %s", sql)
	}
	if len(stmt.Vars) != 2 || stmt.Vars[0] != "PAID" {
		t.Errorf("vars = %v", stmt.Vars)
	}
}

func TestTranslateOrderUnsupported(t *testing.T) {
	_, err := NewGormTranslator().TranslateOrder(shared.And[*order.Order](everyOther{}))
	if !errors.Is(err, ErrUnsupportedSpecification) {
		t.Fatalf("err = %v, want ErrUnsupportedSpecification", err)
	}
}
