// Package splitter implements the reply interception pipeline: clean
// unwanted substrings out of a generated reply, segment it into delivery
// units at configured boundaries, append the original text to the
// conversation's history log, and deliver each unit sequentially with an
// inter-unit delay.
//
// The splitter initializes from configuration via New, creating the
// pattern rules and conversation store internally. Functional options
// supply the transport and allow test overrides of any collaborator.
//
//	s, err := splitter.New(&cfg, splitter.WithTransport(tr))
//	outcome := s.Process(ctx, origin, reply)
//	if outcome.Action == splitter.ActionTakeOver {
//		// discard the original reply, stop downstream handling
//	}
package splitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/splitter/conversation"
	"github.com/tailored-agentic-units/splitter/core/protocol"
	"github.com/tailored-agentic-units/splitter/observability"
	"github.com/tailored-agentic-units/splitter/segment"
	"github.com/tailored-agentic-units/splitter/transport"
)

// ErrNoTransport is returned by New when no transport was supplied.
var ErrNoTransport = errors.New("transport is required")

// Action is the dispatch decision for one processed reply.
type Action int

const (
	// ActionPassThrough means the reply was left untouched: no history
	// written, nothing delivered. The host's original delivery path
	// proceeds as if the splitter were absent.
	ActionPassThrough Action = iota
	// ActionTakeOver means the splitter delivered the reply itself. The
	// host must clear the original reply's content and stop any further
	// processing, or the reply goes out twice.
	ActionTakeOver
)

// Outcome reports what Process did with one reply.
type Outcome struct {
	Action       Action
	Units        []protocol.Sequence // delivery units, in delivery order (takeover only)
	Delivered    int                 // units delivered successfully
	Failed       int                 // units whose delivery attempt failed
	HistorySaved bool
}

// Option configures a Splitter after config-driven initialization.
type Option func(*Splitter)

// WithTransport sets the delivery transport. Required.
func WithTransport(t transport.Transport) Option {
	return func(s *Splitter) { s.transport = t }
}

// WithStore overrides the config-created conversation store.
func WithStore(store conversation.Store) Option {
	return func(s *Splitter) { s.store = store }
}

// WithObserver overrides the config-resolved observer.
func WithObserver(o observability.Observer) Option {
	return func(s *Splitter) { s.observer = o }
}

// WithLogger routes events to the given slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splitter) { s.observer = observability.NewSlogObserver(logger) }
}

// WithSleep overrides the inter-unit sleep function for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Splitter) { s.sleep = sleep }
}

// Splitter intercepts generated replies and owns their delivery when
// cleaning or segmentation changes them. Safe for concurrent use; each
// Process call is an independent pass with no shared mutable state.
type Splitter struct {
	rules     *segment.Rules
	store     conversation.Store
	transport transport.Transport
	observer  observability.Observer
	delay     time.Duration
	sleep     func(time.Duration)
}

// New creates a Splitter from configuration. Patterns are compiled and
// the conversation store constructed here; a malformed pattern fails New.
// The transport must be supplied via WithTransport.
func New(cfg *Config, opts ...Option) (*Splitter, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	store, err := conversation.NewStore(&cfg.Conversation)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation store: %w", err)
	}

	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	s := &Splitter{
		rules:    rules,
		store:    store,
		observer: observer,
		delay:    cfg.DelayDuration(),
		sleep:    time.Sleep,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.transport == nil {
		return nil, ErrNoTransport
	}

	return s, nil
}

// Process runs one reply through the pipeline and returns the dispatch
// decision. With at most one delivery unit and no cleaning configured,
// the pass is a no-op and the caller's original path proceeds untouched.
// Otherwise the splitter takes over: the pre-clean full text goes to the
// conversation history, every unit is delivered in order through the
// transport with the configured delay between consecutive units, and the
// caller must suppress the original reply.
//
// Once takeover begins the pass runs to completion: per-unit delivery
// failures and history errors are logged through the observer, never
// returned, since the original path has already been forfeited.
func (s *Splitter) Process(ctx context.Context, origin string, reply protocol.Sequence) *Outcome {
	if reply.IsEmpty() {
		return &Outcome{Action: ActionPassThrough}
	}

	// History wants the original text, before any cleaning.
	fullText := reply.PlainText()

	cleaned := s.rules.Clean(reply)
	units := s.rules.Split(cleaned)

	if len(units) <= 1 && !s.rules.Cleaning() {
		return &Outcome{Action: ActionPassThrough}
	}

	out := &Outcome{Action: ActionTakeOver, Units: units}

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventTakeOver,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "splitter.Process",
		Data: map[string]any{
			"origin":     origin,
			"unit_count": len(units),
			"cleaning":   s.rules.Cleaning(),
		},
	})

	out.HistorySaved = s.saveHistory(ctx, origin, fullText)

	for i, unit := range units {
		if !unit.IsEmpty() {
			if err := s.transport.Deliver(ctx, origin, unit); err != nil {
				out.Failed++
				s.observer.OnEvent(ctx, observability.Event{
					Type:      EventDeliverFailed,
					Level:     observability.LevelError,
					Timestamp: time.Now(),
					Source:    "splitter.Process",
					Data: map[string]any{
						"origin": origin,
						"unit":   i + 1,
						"error":  err.Error(),
					},
				})
			} else {
				out.Delivered++
				s.observer.OnEvent(ctx, observability.Event{
					Type:      EventDeliver,
					Level:     observability.LevelVerbose,
					Timestamp: time.Now(),
					Source:    "splitter.Process",
					Data: map[string]any{
						"origin": origin,
						"unit":   i + 1,
						"items":  len(unit),
					},
				})
			}
		}

		if i < len(units)-1 {
			s.sleep(s.delay)
		}
	}

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "splitter.Process",
		Data: map[string]any{
			"origin":    origin,
			"delivered": out.Delivered,
			"failed":    out.Failed,
		},
	})

	return out
}

// saveHistory appends the reply's original full text to the origin's
// current conversation as an assistant record. Any failure skips the
// capture with a warning; history is best-effort once takeover happened.
func (s *Splitter) saveHistory(ctx context.Context, origin, content string) bool {
	skip := func(reason string, err error) bool {
		s.observer.OnEvent(ctx, observability.Event{
			Type:      EventHistorySkipped,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "splitter.saveHistory",
			Data: map[string]any{
				"origin": origin,
				"reason": reason,
				"error":  err.Error(),
			},
		})
		return false
	}

	id, err := s.store.CurrentConversationID(ctx, origin)
	if err != nil {
		return skip("no current conversation", err)
	}

	conv, err := s.store.Conversation(ctx, origin, id)
	if err != nil {
		return skip("conversation fetch failed", err)
	}

	history, err := conversation.AppendHistory(conv.History, protocol.NewMessage(protocol.RoleAssistant, content))
	if err != nil {
		return skip("history append failed", err)
	}

	if err := s.store.UpdateConversation(ctx, origin, id, history); err != nil {
		return skip("conversation update failed", err)
	}

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventHistorySaved,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "splitter.saveHistory",
		Data: map[string]any{
			"origin":         origin,
			"conversation":   id,
			"content_length": len(content),
		},
	})
	return true
}
