package packer

import (
	"context"
	"time"

	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/messaging"
)

// OrderStore is the order persistence the packing workflow needs.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByStatus(ctx context.Context, status, packerID string, limit int) ([]entity.Order, error)
	MarkPacked(ctx context.Context, id, image, fromStatus string, at time.Time) error
}

// EventPublisher emits domain events after a state change commits.
type EventPublisher interface {
	Publish(ctx context.Context, evt messaging.Event)
}
