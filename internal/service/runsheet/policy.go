package runsheet

import "github.com/Additional-Code/fleet/internal/entity"

// ReasonRejectedByCustomer is the only cancellation reason that releases stock.
const ReasonRejectedByCustomer = "rejected by customer"

type reasonClass int

const (
	reasonRejectedByCustomer reasonClass = iota + 1
	reasonDeliveryFailed
)

type cancelOutcome struct {
	status  string
	restock bool
}

// cancellationPolicy maps a classified reason to the resulting order status and
// whether reserved stock goes back to inventory. Undelivered is retriable, so
// its stock stays reserved.
var cancellationPolicy = map[reasonClass]cancelOutcome{
	reasonRejectedByCustomer: {status: entity.OrderStatusCancelled, restock: true},
	reasonDeliveryFailed:     {status: entity.OrderStatusUndelivered, restock: false},
}

func classifyReason(reason string) reasonClass {
	if reason == ReasonRejectedByCustomer {
		return reasonRejectedByCustomer
	}
	return reasonDeliveryFailed
}

func outcomeFor(reason string) cancelOutcome {
	return cancellationPolicy[classifyReason(reason)]
}
