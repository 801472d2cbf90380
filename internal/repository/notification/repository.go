package notification

import (
	"context"
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

var repoTracer = otel.Tracer("github.com/Additional-Code/fleet/repository/notification")

// Repository encapsulates read/write access for notifications.
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

// Create persists a notification.
func (r *Repository) Create(ctx context.Context, n *entity.Notification) error {
	if n == nil {
		return errors.New("nil notification")
	}
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.Create", trace.WithAttributes(attribute.String("user.id", n.UserID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(n).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// ListUnread returns a user's unread notifications that have not expired at now, newest first.
func (r *Repository) ListUnread(ctx context.Context, userID string, now time.Time) ([]entity.Notification, error) {
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.ListUnread", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	items := make([]entity.Notification, 0)
	err := r.reader.NewSelect().
		Model(&items).
		Where("user_id = ?", userID).
		Where("? = ?", bun.Ident("read"), false).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("expires_at IS NULL").WhereOr("expires_at > ?", now)
		}).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return items, nil
}
