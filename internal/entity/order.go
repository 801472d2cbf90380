package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order lifecycle statuses.
const (
	OrderStatusPlaced      = "order placed"
	OrderStatusProcessing  = "order processing"
	OrderStatusPacked      = "packed"
	OrderStatusDelivered   = "delivered"
	OrderStatusUndelivered = "undelivered"
	OrderStatusCancelled   = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCash    = "cash"
	PaymentMethodPrepaid = "prepaid"
	PaymentMethodUPI     = "upi"

	PaymentStatusDone = "DONE"
)

// Order is a customer purchase moving through fulfillment.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID             string          `bun:"id,pk" json:"id"`
	Status         string          `bun:"status,notnull" json:"status"`
	Items          []OrderItem     `bun:"items" json:"items"`
	PaymentDetails PaymentDetails  `bun:"payment_details" json:"paymentDetails"`
	TotalPrice     decimal.Decimal `bun:"total_price,type:decimal(12,2)" json:"totalPrice"`
	DeliverySlot   string          `bun:"delivery_slot" json:"deliverySlot,omitempty"`
	PackerID       string          `bun:"packer_id,nullzero" json:"packerId,omitempty"`
	PackedImage    string          `bun:"packed_image,nullzero" json:"packedImage,omitempty"`
	PackedAt       *time.Time      `bun:"packed_at" json:"packedAt,omitempty"`
	DeliveredImage string          `bun:"delivered_image,nullzero" json:"deliveredImage,omitempty"`
	DeliveredAt    *time.Time      `bun:"delivered_at" json:"deliveredAt,omitempty"`
	StatusDetails  *StatusDetails  `bun:"status_details" json:"statusDetails,omitempty"`

	// Bookkeeping written by upstream workflow tooling; never sent to clients.
	Version   int64  `bun:"version,notnull,default:0" json:"-"`
	TaskToken string `bun:"task_token,nullzero" json:"-"`
	TypeName  string `bun:"type_name,nullzero" json:"-"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// OrderItem is a single order line.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// PaymentDetails captures how an order is paid and whether it has been collected.
type PaymentDetails struct {
	Method string `json:"method"`
	Status string `json:"status,omitempty"`
	Via    string `json:"via,omitempty"`
}

// StatusDetails records who moved an order into a non-delivered terminal state and why.
type StatusDetails struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Reason    string    `json:"reason"`
	UpdatedBy string    `json:"updatedBy"`
}
