package fulfillmenttx

import (
	"context"
	"errors"
	"time"

	"github.com/Additional-Code/fleet/internal/entity"
)

// ErrConditionFailed is returned by SetOrderStatus when the order was
// cancelled before the write landed.
var ErrConditionFailed = errors.New("order already cancelled")

// Repository is the set of writes allowed inside a fulfillment transaction.
type Repository interface {
	SetOrderStatus(ctx context.Context, orderID, status string, details entity.StatusDetails) error
	RestockItem(ctx context.Context, productID string, quantity int, at time.Time) error
}

// Runner executes fn inside a single transaction. Every write fn makes
// through tx commits together, and any error returned by fn rolls all of
// them back and is returned wrapped.
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
