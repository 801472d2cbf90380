package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/database"
)

const migrationsDir = "sql"

//go:embed sql/*.sql
var migrationsFS embed.FS

// Module provides the migrator to Fx.
var Module = fx.Provide(New)

// Migrator applies schema changes. Postgres uses versioned goose migrations;
// sqlite and mysql build the schema from the bun models.
type Migrator struct {
	db     *bun.DB
	driver string
	logger *zap.Logger
}

// New constructs a migrator for the configured driver.
func New(cfg config.Config, conns *database.Connections, logger *zap.Logger) (*Migrator, error) {
	driver := cfg.Database.Driver
	if usesGoose(driver) {
		goose.SetBaseFS(migrationsFS)
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
	}

	return &Migrator{
		db:     conns.Writer,
		driver: driver,
		logger: logger,
	}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	if !usesGoose(m.driver) {
		if err := CreateSchema(ctx, m.db); err != nil {
			return err
		}
		m.logger.Info("schema created from models", zap.String("driver", m.driver))

		return nil
	}

	if err := goose.UpContext(ctx, m.db.DB, migrationsDir); err != nil {
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to apply")

			return nil
		}
		return err
	}

	m.logger.Info("migrations applied")

	return nil
}

// Down rolls back migrations. Steps <=0 defaults to 1; all=true rolls everything back.
// Model-based schemas have a single version, so any rollback drops every table.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	if !usesGoose(m.driver) {
		if err := DropSchema(ctx, m.db); err != nil {
			return err
		}
		m.logger.Info("schema dropped", zap.String("driver", m.driver))

		return nil
	}

	if all {
		if err := goose.DownToContext(ctx, m.db.DB, migrationsDir, 0); err != nil {
			if isNoMigrationErr(err) {
				m.logger.Info("no migrations to rollback")

				return nil
			}
			return err
		}
		m.logger.Info("migrations rolled back", zap.String("mode", "all"))

		return nil
	}

	if steps <= 0 {
		steps = 1
	}

	for i := 0; i < steps; i++ {
		if err := goose.DownContext(ctx, m.db.DB, migrationsDir); err != nil {
			if isNoMigrationErr(err) {
				m.logger.Info("no migrations to rollback")

				return nil
			}
			return err
		}
	}

	m.logger.Info("migrations rolled back", zap.Int("steps", steps))

	return nil
}

func usesGoose(driver string) bool {
	switch driver {
	case "postgres", "pgx":
		return true
	default:
		return false
	}
}

func isNoMigrationErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "no migrations")
}

// wrapSchemaErr names the table a schema statement failed on.
func wrapSchemaErr(table string, err error) error {
	return fmt.Errorf("%s: %w", table, err)
}
