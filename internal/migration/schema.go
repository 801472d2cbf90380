package migration

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/Additional-Code/fleet/internal/entity"
)

type tableModel struct {
	name  string
	model any
}

func models() []tableModel {
	return []tableModel{
		{"orders", (*entity.Order)(nil)},
		{"runsheets", (*entity.Runsheet)(nil)},
		{"users", (*entity.User)(nil)},
		{"inventory", (*entity.InventoryItem)(nil)},
		{"notifications", (*entity.Notification)(nil)},
	}
}

type tableIndex struct {
	name    string
	model   any
	columns []string
}

func indexes() []tableIndex {
	return []tableIndex{
		{"orders_status_created_at_idx", (*entity.Order)(nil), []string{"status", "created_at"}},
		{"orders_packer_status_idx", (*entity.Order)(nil), []string{"packer_id", "status"}},
		{"runsheets_rider_status_idx", (*entity.Runsheet)(nil), []string{"rider_id", "status"}},
		{"notifications_user_created_idx", (*entity.Notification)(nil), []string{"user_id", "created_at"}},
	}
}

// CreateSchema creates every table and index from the bun models.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, m := range models() {
		if _, err := db.NewCreateTable().Model(m.model).IfNotExists().Exec(ctx); err != nil {
			return wrapSchemaErr(m.name, err)
		}
	}
	for _, idx := range indexes() {
		q := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...)
		// MySQL has no CREATE INDEX IF NOT EXISTS.
		if db.Dialect().Name() != dialect.MySQL {
			q = q.IfNotExists()
		}
		if _, err := q.Exec(ctx); err != nil {
			return wrapSchemaErr(idx.name, err)
		}
	}
	return nil
}

// DropSchema drops every table created by CreateSchema.
func DropSchema(ctx context.Context, db bun.IDB) error {
	tables := models()
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(tables[i].model).IfExists().Exec(ctx); err != nil {
			return wrapSchemaErr(tables[i].name, err)
		}
	}
	return nil
}
