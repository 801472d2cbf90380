package runsheet

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/dto"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/messaging"
	"github.com/Additional-Code/fleet/internal/metrics"
	"github.com/Additional-Code/fleet/internal/ports/fulfillmenttx"
	orderrepo "github.com/Additional-Code/fleet/internal/repository/order"
	runsheetrepo "github.com/Additional-Code/fleet/internal/repository/runsheet"
	"github.com/Additional-Code/fleet/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/fleet/service/runsheet")

const updatedByRider = "rider"

// Service owns the rider delivery-run lifecycle.
type Service struct {
	runsheets RunsheetStore
	orders    OrderStore
	tx        fulfillmenttx.Runner
	events    EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Runsheets RunsheetStore
	Orders    OrderStore
	Tx        fulfillmenttx.Runner
	Events    EventPublisher   `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
	Logger    *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		runsheets: p.Runsheets,
		orders:    p.Orders,
		tx:        p.Tx,
		events:    p.Events,
		metrics:   p.Metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the rider's pending and active runsheets with per-status order counts.
func (s *Service) List(ctx context.Context, riderID string) ([]dto.RunsheetSummary, error) {
	ctx, span := serviceTracer.Start(ctx, "RunsheetService.List", trace.WithAttributes(attribute.String("rider.id", riderID)))
	defer span.End()

	sheets, err := s.runsheets.ListByRider(ctx, riderID, entity.RunsheetStatusPending, entity.RunsheetStatusActive)
	if err != nil {
		return nil, s.internal(span, "failed to load runsheets", err)
	}

	statuses, err := s.orders.StatusesByIDs(ctx, unionOrderIDs(sheets))
	if err != nil {
		return nil, s.internal(span, "failed to load order statuses", err)
	}

	summaries := make([]dto.RunsheetSummary, 0, len(sheets))
	for _, rs := range sheets {
		summaries = append(summaries, summarize(rs, statuses))
	}
	return summaries, nil
}

// summarize buckets every member order; ids without a known status count as pending.
func summarize(rs entity.Runsheet, statuses map[string]string) dto.RunsheetSummary {
	out := dto.RunsheetSummary{
		ID:                rs.ID,
		Orders:            len(rs.Orders),
		Status:            rs.Status,
		AmountCollectable: rs.AmountCollectable,
	}
	for _, id := range rs.Orders {
		switch statuses[id] {
		case entity.OrderStatusDelivered:
			out.DeliveredOrders++
		case entity.OrderStatusUndelivered:
			out.UndeliveredOrders++
		default:
			out.PendingOrders++
		}
	}
	return out
}

func unionOrderIDs(sheets []entity.Runsheet) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, rs := range sheets {
		for _, id := range rs.Orders {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// Accept marks a runsheet active. The id is not checked for existence and a
// repeated accept re-stamps acceptedAt.
func (s *Service) Accept(ctx context.Context, runsheetID string) error {
	ctx, span := serviceTracer.Start(ctx, "RunsheetService.Accept", trace.WithAttributes(attribute.String("runsheet.id", runsheetID)))
	defer span.End()

	if err := s.runsheets.Accept(ctx, runsheetID, s.now()); err != nil {
		return s.internal(span, "failed to accept runsheet", err)
	}

	s.metrics.RunsheetAccepted()
	s.publish(ctx, messaging.Event{Type: messaging.EventRunsheetAccepted, RunsheetID: runsheetID, Status: entity.RunsheetStatusActive})
	return nil
}

// Get returns a runsheet with its member orders materialised in runsheet order.
// A runsheet assigned to another rider is reported as not found.
func (s *Service) Get(ctx context.Context, riderID, runsheetID string) (*dto.RunsheetDetail, error) {
	ctx, span := serviceTracer.Start(ctx, "RunsheetService.Get", trace.WithAttributes(
		attribute.String("rider.id", riderID),
		attribute.String("runsheet.id", runsheetID),
	))
	defer span.End()

	rs, err := s.runsheets.GetByID(ctx, runsheetID)
	if errors.Is(err, runsheetrepo.ErrNotFound) || (err == nil && rs.RiderID != riderID) {
		return nil, errorbank.NotFound("runsheet not found", errorbank.WithDetail("runsheetId", runsheetID))
	}
	if err != nil {
		return nil, s.internal(span, "failed to load runsheet", err)
	}

	orders, err := s.orders.GetMany(ctx, rs.Orders)
	if err != nil {
		return nil, s.internal(span, "failed to load orders", err)
	}

	byID := make(map[string]entity.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	materialized := make([]entity.Order, 0, len(rs.Orders))
	for _, id := range rs.Orders {
		o, ok := byID[id]
		if !ok {
			continue
		}
		materialized = append(materialized, stripBookkeeping(o))
	}

	return &dto.RunsheetDetail{
		ID:                rs.ID,
		RiderID:           rs.RiderID,
		Status:            rs.Status,
		Orders:            materialized,
		AmountCollectable: rs.AmountCollectable,
		AcceptedAt:        rs.AcceptedAt,
		CreatedAt:         rs.CreatedAt,
	}, nil
}

func stripBookkeeping(o entity.Order) entity.Order {
	o.Version = 0
	o.TaskToken = ""
	o.TypeName = ""
	return o
}

// ConfirmOrder records a successful delivery. Cash orders are marked collected
// through via; other payment details are left untouched. Orders already
// delivered or cancelled are rejected; undelivered orders may be retried.
func (s *Service) ConfirmOrder(ctx context.Context, riderID, runsheetID, orderID, image, via string) error {
	ctx, span := serviceTracer.Start(ctx, "RunsheetService.ConfirmOrder", trace.WithAttributes(
		attribute.String("rider.id", riderID),
		attribute.String("runsheet.id", runsheetID),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	rs, err := s.memberRunsheet(ctx, span, riderID, runsheetID, orderID)
	if err != nil {
		return err
	}

	order, err := s.loadOrder(ctx, span, orderID)
	if err != nil {
		return err
	}
	switch order.Status {
	case entity.OrderStatusDelivered:
		return errorbank.InvalidOperation("order already delivered.", errorbank.WithDetail("orderId", orderID))
	case entity.OrderStatusCancelled:
		return errorbank.InvalidOperation("order already cancelled.", errorbank.WithDetail("orderId", orderID))
	}

	delivery := orderrepo.Delivery{OrderID: orderID, Image: image, DeliveredAt: s.now()}
	if order.PaymentDetails.Method == entity.PaymentMethodCash {
		payment := order.PaymentDetails
		payment.Status = entity.PaymentStatusDone
		payment.Via = via
		delivery.PaymentDetails = &payment
	}

	if err := s.orders.MarkDelivered(ctx, delivery); err != nil {
		return s.internal(span, "failed to confirm order", err)
	}

	s.metrics.OrderTransition(entity.OrderStatusDelivered)
	s.publish(ctx, messaging.Event{
		Type:       messaging.EventOrderDelivered,
		OrderID:    orderID,
		RunsheetID: runsheetID,
		RiderID:    rs.RiderID,
		Status:     entity.OrderStatusDelivered,
	})
	return nil
}

// CancelOrder records a failed delivery. The reason picks the outcome through
// cancellationPolicy; the status write and any restock commit atomically, and
// the write only lands if the order is still not cancelled when the
// transaction runs. It returns the resulting order status.
func (s *Service) CancelOrder(ctx context.Context, riderID, runsheetID, orderID, reason string) (string, error) {
	ctx, span := serviceTracer.Start(ctx, "RunsheetService.CancelOrder", trace.WithAttributes(
		attribute.String("rider.id", riderID),
		attribute.String("runsheet.id", runsheetID),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	rs, err := s.memberRunsheet(ctx, span, riderID, runsheetID, orderID)
	if err != nil {
		return "", err
	}

	order, err := s.loadOrder(ctx, span, orderID)
	if err != nil {
		return "", err
	}
	if order.Status == entity.OrderStatusCancelled {
		return "", errorbank.InvalidOperation("order already cancelled", errorbank.WithDetail("orderId", orderID))
	}

	outcome := outcomeFor(reason)
	now := s.now()
	details := entity.StatusDetails{UpdatedAt: now, Reason: reason, UpdatedBy: updatedByRider}

	err = s.tx.WithTx(ctx, func(tx fulfillmenttx.Repository) error {
		if err := tx.SetOrderStatus(ctx, orderID, outcome.status, details); err != nil {
			return err
		}
		if !outcome.restock {
			return nil
		}
		for _, item := range order.Items {
			if item.Quantity <= 0 {
				continue
			}
			if err := tx.RestockItem(ctx, item.ProductID, item.Quantity, now); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, fulfillmenttx.ErrConditionFailed) {
		return "", errorbank.InvalidOperation("order already cancelled", errorbank.WithDetail("orderId", orderID))
	}
	if err != nil {
		return "", s.internal(span, "failed to cancel order", err)
	}

	span.SetAttributes(attribute.String("order.status", outcome.status), attribute.Bool("order.restocked", outcome.restock))
	s.metrics.OrderTransition(outcome.status)

	eventType := messaging.EventOrderUndelivered
	if outcome.status == entity.OrderStatusCancelled {
		eventType = messaging.EventOrderCancelled
	}
	s.publish(ctx, messaging.Event{
		Type:       eventType,
		OrderID:    orderID,
		RunsheetID: runsheetID,
		RiderID:    rs.RiderID,
		Status:     outcome.status,
		Reason:     reason,
	})
	return outcome.status, nil
}

// memberRunsheet loads a runsheet owned by riderID that lists orderID.
// Another rider's runsheet is reported as missing.
func (s *Service) memberRunsheet(ctx context.Context, span trace.Span, riderID, runsheetID, orderID string) (*entity.Runsheet, error) {
	rs, err := s.runsheets.GetByID(ctx, runsheetID)
	if errors.Is(err, runsheetrepo.ErrNotFound) || (err == nil && rs.RiderID != riderID) {
		return nil, errorbank.InvalidOperation("runsheet doesnt exist.", errorbank.WithDetail("runsheetId", runsheetID))
	}
	if err != nil {
		return nil, s.internal(span, "failed to load runsheet", err)
	}
	if !rs.Contains(orderID) {
		return nil, errorbank.InvalidOperation("order doesnt exist in runsheet.", errorbank.WithDetails(map[string]any{
			"runsheetId": runsheetID,
			"orderId":    orderID,
		}))
	}
	return rs, nil
}

func (s *Service) loadOrder(ctx context.Context, span trace.Span, orderID string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, orderrepo.ErrNotFound) {
		return nil, errorbank.NotFound("order not found", errorbank.WithDetail("orderId", orderID))
	}
	if err != nil {
		return nil, s.internal(span, "failed to load order", err)
	}
	return order, nil
}

func (s *Service) publish(ctx context.Context, evt messaging.Event) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, evt)
}

func (s *Service) internal(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.Error(msg, zap.Error(err))
	return errorbank.Internal(msg, errorbank.WithCause(err))
}
