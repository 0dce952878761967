package observability

import "context"

// NoOpObserver discards all events. Useful for tests and for hosts that
// do their own reply logging.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}
