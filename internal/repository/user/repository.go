package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/fleet/internal/database"
	"github.com/Additional-Code/fleet/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/fleet/repository/user")

var (
	// ErrNotFound is returned when a user is missing.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("user already exists")
)

// Repository encapsulates read/write access for users.
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

// Create persists a new user.
func (r *Repository) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	ctx, span := repoTracer.Start(ctx, "UserRepository.Create", trace.WithAttributes(attribute.String("user.id", u.ID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(u).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
	}
	return err
}

// GetByID fetches a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "UserRepository.GetByID", "id", id)
}

// GetByNumber fetches a user by phone number.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*entity.User, error) {
	return r.getBy(ctx, "UserRepository.GetByNumber", "number", number)
}

// GetByEmail fetches a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "UserRepository.GetByEmail", "email", email)
}

func (r *Repository) getBy(ctx context.Context, spanName, column, value string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, spanName, trace.WithAttributes(attribute.String("user."+column, value)))
	defer span.End()

	u := new(entity.User)
	err := r.reader.NewSelect().Model(u).Where("? = ?", bun.Ident(column), value).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return u, nil
}

// UpdateColumns writes the named columns of u, matched by primary key.
func (r *Repository) UpdateColumns(ctx context.Context, u *entity.User, columns ...string) error {
	if u == nil || len(columns) == 0 {
		return errors.New("nothing to update")
	}
	ctx, span := repoTracer.Start(ctx, "UserRepository.UpdateColumns", trace.WithAttributes(
		attribute.String("user.id", u.ID),
		attribute.StringSlice("user.columns", columns),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(u).Column(columns...).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
