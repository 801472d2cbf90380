package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/fleet/internal/database"
	"github.com/Additional-Code/fleet/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/fleet/repository/order")

var (
	// ErrNotFound is returned when an order is missing.
	ErrNotFound = errors.New("order not found")
	// ErrConditionFailed is returned when a conditional update matched no row.
	ErrConditionFailed = errors.New("order condition failed")
)

// packerColumns is the projection returned to packers.
var packerColumns = []string{"id", "items", "payment_details", "total_price", "created_at", "delivery_slot"}

// Repository encapsulates read/write access for orders.
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

// Create persists a new order using the write connection.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.id", order.ID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// GetMany fetches every order whose id is in ids. Missing ids are skipped.
func (r *Repository) GetMany(ctx context.Context, ids []string) ([]entity.Order, error) {
	if len(ids) == 0 {
		return []entity.Order{}, nil
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetMany", trace.WithAttributes(attribute.Int("order.count", len(ids))))
	defer span.End()

	orders := make([]entity.Order, 0, len(ids))
	err := r.reader.NewSelect().Model(&orders).Where("id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// StatusesByIDs returns the current status of every resolvable order id.
func (r *Repository) StatusesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	statuses := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return statuses, nil
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.StatusesByIDs", trace.WithAttributes(attribute.Int("order.count", len(ids))))
	defer span.End()

	var rows []entity.Order
	err := r.reader.NewSelect().
		Model(&rows).
		Column("id", "status").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	for _, row := range rows {
		statuses[row.ID] = row.Status
	}
	return statuses, nil
}

// ListByStatus returns orders in status, oldest first, optionally scoped to a packer.
func (r *Repository) ListByStatus(ctx context.Context, status, packerID string, limit int) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByStatus", trace.WithAttributes(
		attribute.String("order.status", status),
		attribute.String("order.packer_id", packerID),
	))
	defer span.End()

	orders := make([]entity.Order, 0)
	q := r.reader.NewSelect().
		Model(&orders).
		Column(packerColumns...).
		Where("status = ?", status).
		OrderExpr("created_at ASC").
		Limit(limit)
	if packerID != "" {
		q = q.Where("packer_id = ?", packerID)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// Delivery describes the write performed when a rider confirms an order.
type Delivery struct {
	OrderID        string
	Image          string
	DeliveredAt    time.Time
	PaymentDetails *entity.PaymentDetails
}

// MarkDelivered stamps an order as delivered. PaymentDetails is written only when set.
func (r *Repository) MarkDelivered(ctx context.Context, d Delivery) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.MarkDelivered", trace.WithAttributes(attribute.String("order.id", d.OrderID)))
	defer span.End()

	deliveredAt := d.DeliveredAt
	order := &entity.Order{
		ID:             d.OrderID,
		Status:         entity.OrderStatusDelivered,
		DeliveredImage: d.Image,
		DeliveredAt:    &deliveredAt,
		UpdatedAt:      deliveredAt,
	}
	columns := []string{"status", "delivered_image", "delivered_at", "updated_at"}
	if d.PaymentDetails != nil {
		order.PaymentDetails = *d.PaymentDetails
		columns = append(columns, "payment_details")
	}

	_, err := r.writer.NewUpdate().Model(order).Column(columns...).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// MarkPacked moves an order from fromStatus to packed. It returns
// ErrConditionFailed when the order is no longer in fromStatus.
func (r *Repository) MarkPacked(ctx context.Context, id, image, fromStatus string, at time.Time) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.MarkPacked", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	packedAt := at
	order := &entity.Order{
		ID:          id,
		Status:      entity.OrderStatusPacked,
		PackedImage: image,
		PackedAt:    &packedAt,
		UpdatedAt:   at,
	}
	res, err := r.writer.NewUpdate().
		Model(order).
		Column("status", "packed_image", "packed_at", "updated_at").
		WherePK().
		Where("status = ?", fromStatus).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "condition failed")
		return ErrConditionFailed
	}
	return nil
}
