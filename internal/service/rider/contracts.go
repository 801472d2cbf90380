package rider

import (
	"context"

	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/messaging"
)

// UserStore is the user persistence onboarding needs.
type UserStore interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByNumber(ctx context.Context, number string) (*entity.User, error)
	UpdateColumns(ctx context.Context, u *entity.User, columns ...string) error
}

// EventPublisher emits domain events after a state change commits.
type EventPublisher interface {
	Publish(ctx context.Context, evt messaging.Event)
}
