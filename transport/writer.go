package transport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tailored-agentic-units/splitter/core/protocol"
)

// Writer is a Transport that prints each delivery unit to an io.Writer,
// one item per line. Text items print verbatim; opaque items print as
// their kind tag. Used by the CLI and handy in examples.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
	n  int
}

// NewWriter creates a Writer transport.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (t *Writer) Deliver(_ context.Context, origin string, items protocol.Sequence) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.n++
	if _, err := fmt.Fprintf(t.w, "--- unit %d -> %s ---\n", t.n, origin); err != nil {
		return err
	}
	for _, it := range items {
		var err error
		switch v := it.(type) {
		case protocol.Text:
			_, err = fmt.Fprintln(t.w, v.Text)
		case protocol.Opaque:
			_, err = fmt.Fprintf(t.w, "[%s]\n", v.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
