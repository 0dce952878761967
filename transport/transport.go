// Package transport defines how delivery units leave the splitter: one
// Deliver call per unit, addressed by origin identifier. The bundled
// implementations cover the common host shapes — a channel bridge to a
// consumer goroutine, a plain function adapter, and a writer for CLI use.
package transport

import (
	"context"

	"github.com/tailored-agentic-units/splitter/core/protocol"
)

// Delivery is one delivery unit addressed to an origin.
type Delivery struct {
	Origin string
	Items  protocol.Sequence
}

// Transport sends delivery units to an origin. Deliver is called once
// per unit, strictly in order; an error fails only that unit.
type Transport interface {
	Deliver(ctx context.Context, origin string, items protocol.Sequence) error
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, origin string, items protocol.Sequence) error

func (f Func) Deliver(ctx context.Context, origin string, items protocol.Sequence) error {
	return f(ctx, origin, items)
}
