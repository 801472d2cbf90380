package runsheet

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

var repoTracer = otel.Tracer("github.com/Additional-Code/fleet/repository/runsheet")

// ErrNotFound is returned when a runsheet is missing.
var ErrNotFound = errors.New("runsheet not found")

// Repository encapsulates read/write access for runsheets.
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

// Create persists a runsheet.
func (r *Repository) Create(ctx context.Context, rs *entity.Runsheet) error {
	if rs == nil {
		return errors.New("nil runsheet")
	}
	ctx, span := repoTracer.Start(ctx, "RunsheetRepository.Create", trace.WithAttributes(attribute.String("runsheet.id", rs.ID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(rs).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a runsheet by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Runsheet, error) {
	ctx, span := repoTracer.Start(ctx, "RunsheetRepository.GetByID", trace.WithAttributes(attribute.String("runsheet.id", id)))
	defer span.End()

	rs := new(entity.Runsheet)
	err := r.reader.NewSelect().Model(rs).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return rs, nil
}

// ListByRider returns the rider's runsheets whose status is one of statuses.
func (r *Repository) ListByRider(ctx context.Context, riderID string, statuses ...string) ([]entity.Runsheet, error) {
	ctx, span := repoTracer.Start(ctx, "RunsheetRepository.ListByRider", trace.WithAttributes(attribute.String("rider.id", riderID)))
	defer span.End()

	sheets := make([]entity.Runsheet, 0)
	q := r.reader.NewSelect().
		Model(&sheets).
		Where("rider_id = ?", riderID).
		OrderExpr("created_at ASC")
	if len(statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(statuses))
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return sheets, nil
}

// Accept marks a runsheet active. Unknown ids match no row and are not an error.
func (r *Repository) Accept(ctx context.Context, id string, at time.Time) error {
	ctx, span := repoTracer.Start(ctx, "RunsheetRepository.Accept", trace.WithAttributes(attribute.String("runsheet.id", id)))
	defer span.End()

	acceptedAt := at
	rs := &entity.Runsheet{ID: id, Status: entity.RunsheetStatusActive, AcceptedAt: &acceptedAt}
	_, err := r.writer.NewUpdate().Model(rs).Column("status", "accepted_at").WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}
