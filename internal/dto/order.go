package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/fleet/internal/entity"
)

// PackerOrder is the fixed projection shown to packers.
type PackerOrder struct {
	ID             string                `json:"id"`
	Items          []entity.OrderItem    `json:"items"`
	PaymentDetails entity.PaymentDetails `json:"paymentDetails"`
	TotalPrice     decimal.Decimal       `json:"totalPrice"`
	CreatedAt      time.Time             `json:"createdAt"`
	DeliverySlot   string                `json:"deliverySlot"`
}

// NewPackerOrder projects an order for the packer listing.
func NewPackerOrder(o entity.Order) PackerOrder {
	return PackerOrder{
		ID:             o.ID,
		Items:          o.Items,
		PaymentDetails: o.PaymentDetails,
		TotalPrice:     o.TotalPrice,
		CreatedAt:      o.CreatedAt,
		DeliverySlot:   o.DeliverySlot,
	}
}

// PackOrderRequest is the body of PATCH /packer/order/:id.
type PackOrderRequest struct {
	Action string `json:"action" validate:"required,oneof=pack"`
	Image  string `json:"image" validate:"required,url"`
}

// Message is a plain acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
