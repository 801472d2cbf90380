package entity

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Runsheet statuses.
const (
	RunsheetStatusPending = "pending"
	RunsheetStatusActive  = "active"
	RunsheetStatusClosed  = "closed"
)

// Runsheet is one rider's batch of orders for a delivery round.
type Runsheet struct {
	bun.BaseModel `bun:"table:runsheets,alias:rs"`

	ID                string          `bun:"id,pk" json:"id"`
	RiderID           string          `bun:"rider_id,notnull" json:"riderId"`
	Status            string          `bun:"status,notnull" json:"status"`
	Orders            []string        `bun:"orders" json:"orders"`
	AmountCollectable decimal.Decimal `bun:"amount_collectable,type:decimal(12,2)" json:"amountCollectable"`
	AcceptedAt        *time.Time      `bun:"accepted_at" json:"acceptedAt,omitempty"`
	CreatedAt         time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// Contains reports whether orderID belongs to the runsheet.
func (r *Runsheet) Contains(orderID string) bool {
	if r == nil {
		return false
	}
	return slices.Contains(r.Orders, orderID)
}
