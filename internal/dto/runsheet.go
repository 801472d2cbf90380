package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/fleet/internal/entity"
)

// RunsheetSummary is one row of a rider's runsheet listing. The counts are
// derived from member order statuses on every read.
type RunsheetSummary struct {
	ID                string          `json:"id"`
	Orders            int             `json:"orders"`
	PendingOrders     int             `json:"pendingOrders"`
	DeliveredOrders   int             `json:"deliveredOrders"`
	UndeliveredOrders int             `json:"undeliveredOrders"`
	Status            string          `json:"status"`
	AmountCollectable decimal.Decimal `json:"amountCollectable"`
}

// RunsheetDetail is a runsheet with its orders materialised.
type RunsheetDetail struct {
	ID                string          `json:"id"`
	RiderID           string          `json:"riderId"`
	Status            string          `json:"status"`
	Orders            []entity.Order  `json:"orders"`
	AmountCollectable decimal.Decimal `json:"amountCollectable"`
	AcceptedAt        *time.Time      `json:"acceptedAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// CompleteOrderRequest is the body of the delivery confirmation route.
type CompleteOrderRequest struct {
	Image string `json:"image" validate:"required,url"`
	Via   string `json:"via,omitempty" validate:"omitempty,max=32"`
}

// CancelOrderRequest is the body of the cancellation route.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=256"`
}
