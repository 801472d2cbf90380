package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/database"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/identity"
)

// Module provides the Seeder to Fx.
var Module = fx.Provide(New)

// Demo credentials written by the seeder.
const (
	RiderID        = "rider-demo"
	RiderNumber    = "9876543210"
	PackerID       = "packer-demo"
	PackerEmail    = "packer@fleet.local"
	PackerPassword = "packer-demo-pass"
)

// Seeder performs database seeding for local/dev setups. Every insert is
// idempotent, so re-running leaves existing rows untouched.
type Seeder struct {
	db         *bun.DB
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, cfg config.Config, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:         conns.Writer,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds users, stock, orders and one runsheet.
func (s *Seeder) Run(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", s.Users},
		{"inventory", s.Inventory},
		{"orders", s.Orders},
		{"runsheets", s.Runsheets},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}
	return nil
}

// Users seeds one onboarded rider and one packer with a password.
func (s *Seeder) Users(ctx context.Context) error {
	hash, err := identity.HashPassword(PackerPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	now := s.now()

	users := []entity.User{
		{
			ID:           RiderID,
			Number:       RiderNumber,
			Role:         entity.RoleRider,
			Name:         "Demo Rider",
			ReviewStatus: entity.ReviewStatusApproved,
			ProfileStatus: entity.ProfileStatus{
				PersonalInfoCompleted: true,
				BankDetailsCompleted:  true,
				DocumentsCompleted:    true,
			},
			PersonalDetails: entity.PersonalDetails{FullName: "Demo Rider", Number: RiderNumber},
			BankDetails:     entity.BankDetails{BankName: "Demo Bank", Acc: "000111222", IFSC: "DEMO0000001", Status: "verified"},
			Documents:       []entity.Document{{Name: "licence", Image: "https://files.fleet.local/licence.png", Verified: "verified"}},
			SubmittedAt:     &now,
			AccountVerified: true,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:           PackerID,
			Role:         entity.RolePacker,
			Name:         "Demo Packer",
			Email:        PackerEmail,
			PasswordHash: hash,
			ReviewStatus: entity.ReviewStatusApproved,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	return s.insert(ctx, "users", &users, len(users))
}

// Inventory seeds stock rows for the demo products.
func (s *Seeder) Inventory(ctx context.Context) error {
	now := s.now()
	items := []entity.InventoryItem{
		{ID: "P1", StockQuantity: 10, UpdatedAt: now},
		{ID: "P2", StockQuantity: 0, UpdatedAt: now},
	}
	return s.insert(ctx, "inventory", &items, len(items))
}

// Orders seeds two orders waiting for a packer and two on the demo runsheet.
func (s *Seeder) Orders(ctx context.Context) error {
	now := s.now()
	item := func(product string, qty int, price string) entity.OrderItem {
		return entity.OrderItem{ProductID: product, Quantity: qty, Price: decimal.RequireFromString(price)}
	}

	orders := []entity.Order{
		{
			ID:             "O1",
			Status:         entity.OrderStatusProcessing,
			Items:          []entity.OrderItem{item("P1", 2, "40.00")},
			PaymentDetails: entity.PaymentDetails{Method: entity.PaymentMethodCash},
			TotalPrice:     decimal.RequireFromString("80.00"),
			DeliverySlot:   "09:00-11:00",
			PackerID:       PackerID,
			CreatedAt:      now.Add(-2 * time.Hour),
		},
		{
			ID:             "O2",
			Status:         entity.OrderStatusProcessing,
			Items:          []entity.OrderItem{item("P2", 1, "120.00")},
			PaymentDetails: entity.PaymentDetails{Method: entity.PaymentMethodPrepaid},
			TotalPrice:     decimal.RequireFromString("120.00"),
			DeliverySlot:   "11:00-13:00",
			CreatedAt:      now.Add(-time.Hour),
		},
		{
			ID:             "O3",
			Status:         entity.OrderStatusPacked,
			Items:          []entity.OrderItem{item("P1", 3, "40.00"), item("P2", 1, "120.00")},
			PaymentDetails: entity.PaymentDetails{Method: entity.PaymentMethodCash},
			TotalPrice:     decimal.RequireFromString("240.00"),
			DeliverySlot:   "09:00-11:00",
			PackedAt:       &now,
			CreatedAt:      now.Add(-3 * time.Hour),
		},
		{
			ID:             "O4",
			Status:         entity.OrderStatusPacked,
			Items:          []entity.OrderItem{item("P1", 1, "40.00")},
			PaymentDetails: entity.PaymentDetails{Method: entity.PaymentMethodUPI},
			TotalPrice:     decimal.RequireFromString("40.00"),
			DeliverySlot:   "09:00-11:00",
			PackedAt:       &now,
			CreatedAt:      now.Add(-3 * time.Hour),
		},
	}
	return s.insert(ctx, "orders", &orders, len(orders))
}

// Runsheets seeds one pending runsheet for the demo rider.
func (s *Seeder) Runsheets(ctx context.Context) error {
	runsheets := []entity.Runsheet{
		{
			ID:                "RS1",
			RiderID:           RiderID,
			Status:            entity.RunsheetStatusPending,
			Orders:            []string{"O3", "O4"},
			AmountCollectable: decimal.RequireFromString("240.00"),
			CreatedAt:         s.now(),
		},
	}
	return s.insert(ctx, "runsheets", &runsheets, len(runsheets))
}

// insert skips rows whose primary key already exists. bun renders Ignore as
// INSERT IGNORE on mysql and ON CONFLICT DO NOTHING elsewhere.
func (s *Seeder) insert(ctx context.Context, table string, rows any, count int) error {
	res, err := s.db.NewInsert().Model(rows).Ignore().Exec(ctx)
	if err != nil {
		return err
	}
	inserted, _ := res.RowsAffected()
	s.logger.Info("seeded table",
		zap.String("table", table),
		zap.Int("candidates", count),
		zap.Int64("inserted", inserted),
	)
	return nil
}
