package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/fleet/internal/database"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/ports/fulfillmenttx"
	"github.com/Additional-Code/fleet/internal/repository/inventory"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/fleet/repository/fulfillment")

// Runner executes order and inventory writes in a single transaction.
type Runner struct {
	db *bun.DB
}

// NewRunner builds a Runner on the write connection.
func NewRunner(conns *database.Connections) *Runner {
	return &Runner{db: conns.Writer}
}

// WithTx opens a transaction and executes fn within it. Any error from fn
// rolls back every write fn made.
func (r *Runner) WithTx(ctx context.Context, fn func(tx fulfillmenttx.Repository) error) error {
	ctx, span := repoTracer.Start(ctx, "FulfillmentRunner.WithTx")
	defer span.End()

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(&TxRepo{tx: tx})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction failed")
		return fmt.Errorf("fulfillment tx: %w", err)
	}
	return nil
}

// TxRepo performs writes bound to an open transaction.
type TxRepo struct {
	tx bun.Tx
}

var _ fulfillmenttx.Repository = (*TxRepo)(nil)

// SetOrderStatus writes status and status details for an order that is not
// already cancelled. A cancelled or missing order yields ErrConditionFailed.
func (r *TxRepo) SetOrderStatus(ctx context.Context, orderID, status string, details entity.StatusDetails) error {
	ctx, span := repoTracer.Start(ctx, "FulfillmentTx.SetOrderStatus", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status", status),
	))
	defer span.End()

	order := &entity.Order{
		ID:            orderID,
		Status:        status,
		StatusDetails: &details,
		UpdatedAt:     details.UpdatedAt,
	}
	res, err := r.tx.NewUpdate().
		Model(order).
		Column("status", "status_details", "updated_at").
		WherePK().
		Where("status != ?", entity.OrderStatusCancelled).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rows affected failed")
		return err
	}
	if rows == 0 {
		span.SetStatus(codes.Error, "condition failed")
		return fulfillmenttx.ErrConditionFailed
	}
	return nil
}

// RestockItem increments a product's stock inside the transaction.
func (r *TxRepo) RestockItem(ctx context.Context, productID string, quantity int, at time.Time) error {
	return inventory.Restock(ctx, r.tx, productID, quantity, at)
}
