package packer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/cache"
	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/database/dbtest"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/messaging"
	orderrepo "github.com/Additional-Code/fleet/internal/repository/order"
	"github.com/Additional-Code/fleet/pkg/errorbank"
)

var fixedNow = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type recordingPublisher struct {
	events []messaging.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt messaging.Event) {
	p.events = append(p.events, evt)
}

// racingStore reports a packable order but loses the conditional update.
type racingStore struct {
	OrderStore
	order entity.Order
}

func (s racingStore) GetByID(context.Context, string) (*entity.Order, error) {
	o := s.order
	return &o, nil
}

func (s racingStore) MarkPacked(context.Context, string, string, string, time.Time) error {
	return orderrepo.ErrConditionFailed
}

func packerConfig() config.Config {
	return config.Config{Packer: config.Packer{PackableStatus: entity.OrderStatusProcessing, ListLimit: 100}}
}

func newService(t *testing.T, store OrderStore, c cache.Store, pub EventPublisher) *Service {
	t.Helper()
	svc := NewService(Params{Orders: store, Cache: c, Config: packerConfig(), Events: pub, Logger: zap.NewNop()})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func seed(t *testing.T, repo *orderrepo.Repository, orders ...entity.Order) {
	t.Helper()
	for i := range orders {
		require.NoError(t, repo.Create(context.Background(), &orders[i]))
	}
}

func TestListOrders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := orderrepo.NewRepository(dbtest.New(t))
	seed(t, repo,
		entity.Order{ID: "late", Status: entity.OrderStatusProcessing, PackerID: "PK1", CreatedAt: fixedNow.Add(-time.Hour), TotalPrice: decimal.NewFromInt(40)},
		entity.Order{ID: "early", Status: entity.OrderStatusProcessing, PackerID: "PK2", CreatedAt: fixedNow.Add(-3 * time.Hour), Items: []entity.OrderItem{{ProductID: "P1", Quantity: 2}}},
		entity.Order{ID: "placed", Status: entity.OrderStatusPlaced, CreatedAt: fixedNow.Add(-4 * time.Hour)},
		entity.Order{ID: "done", Status: entity.OrderStatusPacked, CreatedAt: fixedNow.Add(-5 * time.Hour)},
	)
	svc := newService(t, repo, nil, nil)

	all, err := svc.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "early", all[0].ID)
	require.Equal(t, "late", all[1].ID)
	require.Equal(t, "P1", all[0].Items[0].ProductID)
	require.Equal(t, 2, all[0].Items[0].Quantity)
	require.True(t, decimal.NewFromInt(40).Equal(all[1].TotalPrice))

	scoped, err := svc.ListOrders(ctx, "PK1")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, "late", scoped[0].ID)
}

func TestListOrders_UsesConfiguredStatus(t *testing.T) {
	t.Parallel()
	repo := orderrepo.NewRepository(dbtest.New(t))
	seed(t, repo,
		entity.Order{ID: "placed", Status: entity.OrderStatusPlaced, CreatedAt: fixedNow},
		entity.Order{ID: "processing", Status: entity.OrderStatusProcessing, CreatedAt: fixedNow},
	)
	cfg := packerConfig()
	cfg.Packer.PackableStatus = entity.OrderStatusPlaced
	svc := NewService(Params{Orders: repo, Config: cfg, Logger: zap.NewNop()})

	got, err := svc.ListOrders(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "placed", got[0].ID)
}

func TestPackOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := orderrepo.NewRepository(dbtest.New(t))
	seed(t, repo, entity.Order{ID: "O1", Status: entity.OrderStatusProcessing, PackerID: "PK1", CreatedAt: fixedNow.Add(-time.Hour)})
	store := newMemStore()
	pub := &recordingPublisher{}
	svc := newService(t, repo, store, pub)

	listed, err := svc.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	_, err = store.Get(ctx, listCacheKey(""))
	require.NoError(t, err)

	require.NoError(t, svc.PackOrder(ctx, "O1", "https://img.example/packed.jpg"))

	got, err := repo.GetByID(ctx, "O1")
	require.NoError(t, err)
	require.Equal(t, entity.OrderStatusPacked, got.Status)
	require.Equal(t, "https://img.example/packed.jpg", got.PackedImage)
	require.NotNil(t, got.PackedAt)
	require.True(t, fixedNow.Equal(*got.PackedAt))

	_, err = store.Get(ctx, listCacheKey(""))
	require.ErrorIs(t, err, cache.ErrCacheMiss)
	listed, err = svc.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Empty(t, listed)

	require.Len(t, pub.events, 1)
	require.Equal(t, messaging.EventOrderPacked, pub.events[0].Type)
	require.Equal(t, "O1", pub.events[0].OrderID)
}

func TestPackOrder_AlreadyPackedLeavesOrderUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := orderrepo.NewRepository(dbtest.New(t))
	packedAt := fixedNow.Add(-time.Hour)
	seed(t, repo, entity.Order{
		ID:          "O1",
		Status:      entity.OrderStatusPacked,
		PackedImage: "https://img.example/first.jpg",
		PackedAt:    &packedAt,
		CreatedAt:   fixedNow.Add(-2 * time.Hour),
	})
	before, err := repo.GetByID(ctx, "O1")
	require.NoError(t, err)

	pub := &recordingPublisher{}
	err = newService(t, repo, nil, pub).PackOrder(ctx, "O1", "https://img.example/second.jpg")
	require.Error(t, err)
	appErr := errorbank.From(err)
	require.Equal(t, errorbank.KindInvalidOperation, appErr.Kind())
	require.Equal(t, 400, appErr.StatusCode())
	require.Equal(t, "order already packed.", appErr.Message())

	after, err := repo.GetByID(ctx, "O1")
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Empty(t, pub.events)
}

func TestPackOrder_NotFound(t *testing.T) {
	t.Parallel()
	repo := orderrepo.NewRepository(dbtest.New(t))

	err := newService(t, repo, nil, nil).PackOrder(context.Background(), "missing", "https://img.example/x.jpg")
	require.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestPackOrder_LostRace(t *testing.T) {
	t.Parallel()
	store := racingStore{order: entity.Order{ID: "O1", Status: entity.OrderStatusProcessing}}

	err := newService(t, store, nil, nil).PackOrder(context.Background(), "O1", "https://img.example/x.jpg")
	require.True(t, errorbank.IsKind(err, errorbank.KindInvalidOperation))
}
