package runsheet

import (
	"context"
	"time"

	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/messaging"
	orderrepo "github.com/Additional-Code/fleet/internal/repository/order"
)

// RunsheetStore is the runsheet persistence the engine needs.
type RunsheetStore interface {
	GetByID(ctx context.Context, id string) (*entity.Runsheet, error)
	ListByRider(ctx context.Context, riderID string, statuses ...string) ([]entity.Runsheet, error)
	Accept(ctx context.Context, id string, at time.Time) error
}

// OrderStore is the order persistence the engine needs.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetMany(ctx context.Context, ids []string) ([]entity.Order, error)
	StatusesByIDs(ctx context.Context, ids []string) (map[string]string, error)
	MarkDelivered(ctx context.Context, d orderrepo.Delivery) error
}

// EventPublisher emits domain events after a state change commits.
type EventPublisher interface {
	Publish(ctx context.Context, evt messaging.Event)
}
