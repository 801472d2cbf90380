package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/fleet/internal/database"
	"github.com/Additional-Code/fleet/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/fleet/repository/inventory")

// ErrNotFound is returned when an inventory item is missing.
var ErrNotFound = errors.New("inventory item not found")

// Repository encapsulates read/write access for inventory.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// GetByID fetches stock for a product.
func (r *Repository) GetByID(ctx context.Context, productID string) (*entity.InventoryItem, error) {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.GetByID", trace.WithAttributes(attribute.String("product.id", productID)))
	defer span.End()

	item := new(entity.InventoryItem)
	err := r.reader.NewSelect().Model(item).Where("id = ?", productID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return item, nil
}

// Create persists a new inventory item.
func (r *Repository) Create(ctx context.Context, item *entity.InventoryItem) error {
	if item == nil {
		return errors.New("nil inventory item")
	}
	if item.StockQuantity < 0 {
		return fmt.Errorf("negative stock for %s", item.ID)
	}
	_, err := r.writer.NewInsert().Model(item).Exec(ctx)
	return err
}

// Restock increments stock through the write connection.
func (r *Repository) Restock(ctx context.Context, productID string, quantity int, at time.Time) error {
	return Restock(ctx, r.writer, productID, quantity, at)
}

// Restock adds quantity to a product's stock on db, creating the row when the
// product has never been stocked. It works on both *bun.DB and bun.Tx.
func Restock(ctx context.Context, db bun.IDB, productID string, quantity int, at time.Time) error {
	if quantity <= 0 {
		return fmt.Errorf("restock quantity must be positive, got %d", quantity)
	}
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.Restock", trace.WithAttributes(
		attribute.String("product.id", productID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	res, err := db.NewUpdate().
		Model((*entity.InventoryItem)(nil)).
		Set("stock_quantity = stock_quantity + ?", quantity).
		Set("updated_at = ?", at).
		Where("id = ?", productID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	item := &entity.InventoryItem{ID: productID, StockQuantity: quantity, UpdatedAt: at}
	if _, err := db.NewInsert().Model(item).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}
