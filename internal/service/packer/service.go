package packer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/cache"
	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/dto"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/messaging"
	"github.com/Additional-Code/fleet/internal/metrics"
	orderrepo "github.com/Additional-Code/fleet/internal/repository/order"
	"github.com/Additional-Code/fleet/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/fleet/service/packer")

// listCacheTTL bounds how stale a cached packer listing may be.
const listCacheTTL = 15 * time.Second

const allPackersKey = "all"

// Service encapsulates the packing workflow.
type Service struct {
	orders         OrderStore
	cache          cache.Store
	events         EventPublisher
	metrics        *metrics.Metrics
	logger         *zap.Logger
	packableStatus string
	listLimit      int
	now            func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders  OrderStore
	Cache   cache.Store `optional:"true"`
	Config  config.Config
	Events  EventPublisher   `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
	Logger  *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:         p.Orders,
		cache:          p.Cache,
		events:         p.Events,
		metrics:        p.Metrics,
		logger:         logger,
		packableStatus: p.Config.Packer.PackableStatus,
		listLimit:      p.Config.Packer.ListLimit,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ListOrders returns orders waiting to be packed, oldest first. An empty
// packerID lists every packable order.
func (s *Service) ListOrders(ctx context.Context, packerID string) ([]dto.PackerOrder, error) {
	ctx, span := serviceTracer.Start(ctx, "PackerService.ListOrders", trace.WithAttributes(attribute.String("packer.id", packerID)))
	defer span.End()

	if cached, err := s.listFromCache(ctx, packerID); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("packer list cache read failed", zap.String("packerId", packerID), zap.Error(err))
	}

	orders, err := s.orders.ListByStatus(ctx, s.packableStatus, packerID, s.listLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}

	out := make([]dto.PackerOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.NewPackerOrder(o))
	}

	if err := s.storeList(ctx, packerID, out); err != nil {
		s.logger.Warn("packer list cache write failed", zap.String("packerId", packerID), zap.Error(err))
	}
	return out, nil
}

// PackOrder moves a packable order to packed with the packing photo.
func (s *Service) PackOrder(ctx context.Context, orderID, image string) error {
	ctx, span := serviceTracer.Start(ctx, "PackerService.PackOrder", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, orderrepo.ErrNotFound) {
		return errorbank.NotFound("order not found", errorbank.WithDetail("orderId", orderID))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	if order.Status != s.packableStatus {
		return errorbank.InvalidOperation("order already packed.", errorbank.WithDetails(map[string]any{
			"orderId": orderID,
			"status":  order.Status,
		}))
	}

	err = s.orders.MarkPacked(ctx, orderID, image, s.packableStatus, s.now())
	if errors.Is(err, orderrepo.ErrConditionFailed) {
		return errorbank.InvalidOperation("order already packed.", errorbank.WithDetail("orderId", orderID))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to pack order", errorbank.WithCause(err))
	}

	s.invalidateLists(ctx, order.PackerID)
	s.metrics.OrderTransition(entity.OrderStatusPacked)
	if s.events != nil {
		s.events.Publish(ctx, messaging.Event{
			Type:    messaging.EventOrderPacked,
			OrderID: orderID,
			Status:  entity.OrderStatusPacked,
		})
	}
	return nil
}

func listCacheKey(packerID string) string {
	if packerID == "" {
		packerID = allPackersKey
	}
	return "packer:orders:" + packerID
}

func (s *Service) listFromCache(ctx context.Context, packerID string) ([]dto.PackerOrder, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	raw, err := s.cache.Get(ctx, listCacheKey(packerID))
	if err != nil {
		return nil, err
	}
	var out []dto.PackerOrder
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) storeList(ctx context.Context, packerID string, orders []dto.PackerOrder) error {
	if s.cache == nil {
		return nil
	}
	raw, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, listCacheKey(packerID), raw, listCacheTTL)
}

func (s *Service) invalidateLists(ctx context.Context, packerID string) {
	if s.cache == nil {
		return
	}
	keys := []string{listCacheKey("")}
	if packerID != "" {
		keys = append(keys, listCacheKey(packerID))
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("packer list cache invalidate failed", zap.String("key", key), zap.Error(err))
		}
	}
}
