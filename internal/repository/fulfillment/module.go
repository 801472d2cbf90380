package fulfillment

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/fleet/internal/ports/fulfillmenttx"
)

// Module provides the fulfillment transaction runner to Fx.
var Module = fx.Provide(
	fx.Annotate(NewRunner, fx.As(new(fulfillmenttx.Runner))),
)
