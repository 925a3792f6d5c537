package mysql

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jewelry/infrastructure/persistence/mysql/po"
	"jewelry/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	MigrationGoose = "goose"
	MigrationAuto  = "auto"
	MigrationNone  = "none"
)

// Migrate brings the schema up to date. goose runs the embedded SQL files,
// auto lets gorm derive tables from the persistence objects (development only).
func Migrate(ctx context.Context, db *gorm.DB, mode string) error {
	switch mode {
	case MigrationNone:
		return nil
	case MigrationAuto:
		logger.Info("Running gorm auto-migration")
		return db.WithContext(ctx).AutoMigrate(
			&po.UserPO{},
			&po.ProductPO{},
			&po.OrderPO{},
			&po.OrderLinePO{},
			&po.OutboxEventPO{},
		)
	case MigrationGoose, "":
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		goose.SetBaseFS(migrations)
		goose.SetLogger(gooseLogger{})
		if err := goose.SetDialect("mysql"); err != nil {
			return err
		}
		if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		version, err := goose.GetDBVersionContext(ctx, sqlDB)
		if err != nil {
			return err
		}
		logger.Info("Database schema up to date", zap.Int64("version", version))
		return nil
	default:
		return fmt.Errorf("unknown migration mode %q", mode)
	}
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...any) { logger.Get().Sugar().Fatalf(format, v...) }
func (gooseLogger) Printf(format string, v ...any) { logger.Get().Sugar().Infof(format, v...) }
