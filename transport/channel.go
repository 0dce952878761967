package transport

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/tailored-agentic-units/splitter/core/protocol"
)

// ErrClosed is returned by Deliver after the channel transport is closed.
var ErrClosed = errors.New("transport closed")

// Channel is a Transport backed by a buffered channel. The splitter side
// calls Deliver; the host side drains deliveries with Receive from its
// own goroutine. Close is idempotent.
type Channel struct {
	deliveries chan Delivery
	context    context.Context
	closed     atomic.Int32
}

// NewChannel creates a Channel with the given buffer size. The context
// bounds the transport's lifetime: once it is done, Deliver and Receive
// return its error.
func NewChannel(ctx context.Context, bufferSize int) *Channel {
	return &Channel{
		deliveries: make(chan Delivery, bufferSize),
		context:    ctx,
	}
}

func (c *Channel) Deliver(ctx context.Context, origin string, items protocol.Sequence) error {
	if c.closed.Load() == 1 {
		return ErrClosed
	}

	select {
	case c.deliveries <- Delivery{Origin: origin, Items: items}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.context.Done():
		return c.context.Err()
	}
}

// Receive blocks until a delivery arrives or a context ends. After Close,
// buffered deliveries drain first, then Receive returns ErrClosed.
func (c *Channel) Receive(ctx context.Context) (Delivery, error) {
	select {
	case d, ok := <-c.deliveries:
		if !ok {
			return Delivery{}, ErrClosed
		}
		return d, nil
	case <-ctx.Done():
		return Delivery{}, ctx.Err()
	case <-c.context.Done():
		return Delivery{}, c.context.Err()
	}
}

// TryReceive returns a pending delivery without blocking.
func (c *Channel) TryReceive() (Delivery, bool) {
	select {
	case d, ok := <-c.deliveries:
		return d, ok
	default:
		return Delivery{}, false
	}
}

// Close marks the transport closed. Pending deliveries remain receivable.
func (c *Channel) Close() {
	if c.closed.CompareAndSwap(0, 1) {
		close(c.deliveries)
	}
}

// QueueLength reports the number of buffered deliveries.
func (c *Channel) QueueLength() int {
	return len(c.deliveries)
}
