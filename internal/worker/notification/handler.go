package notification

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/messaging"
	notificationsvc "github.com/Additional-Code/fleet/internal/service/notification"
	"github.com/Additional-Code/fleet/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/fleet/worker/notification")

// Notifier turns a domain event into a stored notification.
type Notifier interface {
	NotifyEvent(ctx context.Context, evt messaging.Event) (bool, error)
}

// Module registers the notification worker handler.
var Module = fx.Module("worker_notification",
	fx.Provide(
		func(s *notificationsvc.Service) Notifier { return s },
		fx.Annotate(
			NewEventHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewEventHandler consumes fleet domain events and stores rider notifications.
// Undecodable messages are logged and dropped; storage failures are returned
// so the message is retried.
func NewEventHandler(notifier Notifier, logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.notifications.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.Int64("messaging.offset", msg.Offset),
		))
		defer span.End()

		evt, err := messaging.DecodeEvent(msg)
		if err != nil {
			logger.Error("failed to decode event", zap.Int64("offset", msg.Offset), zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return nil
		}
		span.SetAttributes(attribute.String("event.type", evt.Type))

		stored, err := notifier.NotifyEvent(ctx, evt)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "notify failed")
			return err
		}
		logger.Debug("event processed",
			zap.String("type", evt.Type),
			zap.String("eventId", evt.EventID),
			zap.Bool("notified", stored),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
