package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// InventoryItem tracks saleable stock for a product; ID is the product id.
type InventoryItem struct {
	bun.BaseModel `bun:"table:inventory,alias:inv"`

	ID            string    `bun:"id,pk" json:"id"`
	StockQuantity int       `bun:"stock_quantity,notnull,default:0" json:"stockQuantity"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}
