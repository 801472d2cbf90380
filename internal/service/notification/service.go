package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/messaging"
	"github.com/Additional-Code/fleet/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/fleet/service/notification")

// retention is how long a notification stays visible when unread.
const retention = 7 * 24 * time.Hour

// Store is the notification persistence the service needs.
type Store interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListUnread(ctx context.Context, userID string, now time.Time) ([]entity.Notification, error)
}

// Service lists rider notifications and derives them from domain events.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires a new Service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// List returns the user's unread, unexpired notifications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]entity.Notification, error) {
	ctx, span := serviceTracer.Start(ctx, "NotificationService.List", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	items, err := s.store.ListUnread(ctx, userID, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list notifications", errorbank.WithCause(err))
	}
	return items, nil
}

// NotifyEvent stores the rider-facing notification for evt. Events with no
// rider or no rider-facing message are ignored and report false.
func (s *Service) NotifyEvent(ctx context.Context, evt messaging.Event) (bool, error) {
	ctx, span := serviceTracer.Start(ctx, "NotificationService.NotifyEvent", trace.WithAttributes(attribute.String("event.type", evt.Type)))
	defer span.End()

	title, message, ok := render(evt)
	if !ok || evt.RiderID == "" {
		return false, nil
	}

	now := s.now()
	expires := now.Add(retention)
	n := &entity.Notification{
		ID:        s.newID(),
		UserID:    evt.RiderID,
		Title:     title,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: &expires,
	}
	if err := s.store.Create(ctx, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return false, fmt.Errorf("store notification: %w", err)
	}
	s.logger.Debug("notification stored", zap.String("userId", n.UserID), zap.String("type", evt.Type))
	return true, nil
}

func render(evt messaging.Event) (title, message string, ok bool) {
	switch evt.Type {
	case messaging.EventOrderDelivered:
		return "Order delivered", fmt.Sprintf("Order %s was marked delivered.", evt.OrderID), true
	case messaging.EventOrderCancelled:
		return "Order cancelled", fmt.Sprintf("Order %s was cancelled: %s.", evt.OrderID, evt.Reason), true
	case messaging.EventOrderUndelivered:
		return "Delivery not completed", fmt.Sprintf("Order %s was marked undelivered: %s.", evt.OrderID, evt.Reason), true
	case messaging.EventRiderSubmitted:
		return "Profile submitted", "Your profile has been submitted for review.", true
	default:
		return "", "", false
	}
}
