package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/config"
)

// Event types published by fleet services.
const (
	EventOrderDelivered   = "order.delivered"
	EventOrderCancelled   = "order.cancelled"
	EventOrderUndelivered = "order.undelivered"
	EventOrderPacked      = "order.packed"
	EventRunsheetAccepted = "runsheet.accepted"
	EventRiderSubmitted   = "rider.submitted"
)

// Event is the JSON envelope written to the messaging topic.
type Event struct {
	EventID    string    `json:"eventId"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	OrderID    string    `json:"orderId,omitempty"`
	RunsheetID string    `json:"runsheetId,omitempty"`
	RiderID    string    `json:"riderId,omitempty"`
	Status     string    `json:"status,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// Key picks the partition key so events for one aggregate stay ordered.
func (e Event) Key() string {
	switch {
	case e.OrderID != "":
		return "order-" + e.OrderID
	case e.RunsheetID != "":
		return "runsheet-" + e.RunsheetID
	default:
		return "rider-" + e.RiderID
	}
}

// DecodeEvent parses a message value into an Event.
func DecodeEvent(msg Message) (Event, error) {
	var evt Event
	err := json.Unmarshal(msg.Value, &evt)
	return evt, err
}

// EventPublisher serialises events onto the bus. Failures are logged and
// swallowed; a committed state change is never undone by a lost event.
type EventPublisher struct {
	client  Client
	logger  *zap.Logger
	enabled bool
	now     func() time.Time
}

// NewEventPublisher wires an EventPublisher over the messaging client.
func NewEventPublisher(client Client, cfg config.Config, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{
		client:  client,
		logger:  logger,
		enabled: cfg.Messaging.Enabled,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Publish stamps id and time on evt and writes it to the topic.
func (p *EventPublisher) Publish(ctx context.Context, evt Event) {
	if p == nil || !p.enabled || p.client == nil {
		return
	}
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = p.now()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("marshal event", zap.String("type", evt.Type), zap.Error(err))
		return
	}
	headers := map[string]string{HeaderEventType: evt.Type}
	if err := p.client.Publish(ctx, []byte(evt.Key()), payload, headers); err != nil {
		p.logger.Error("publish event", zap.String("type", evt.Type), zap.String("key", evt.Key()), zap.Error(err))
	}
}
