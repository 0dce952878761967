package splitter_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/splitter/conversation"
	"github.com/tailored-agentic-units/splitter/core/protocol"
	"github.com/tailored-agentic-units/splitter/splitter"
)

const origin = "qq:GroupMessage:12345"

// recordingTransport captures delivered units and can fail selected calls.
type recordingTransport struct {
	units   []protocol.Sequence
	failOn  map[int]error // 1-based call number -> error
	calls   int
	origins []string
}

func (r *recordingTransport) Deliver(_ context.Context, origin string, items protocol.Sequence) error {
	r.calls++
	r.origins = append(r.origins, origin)
	if err, ok := r.failOn[r.calls]; ok {
		return err
	}
	r.units = append(r.units, items)
	return nil
}

type fixture struct {
	splitter  *splitter.Splitter
	transport *recordingTransport
	store     *conversation.MemoryStore
	sleeps    []time.Duration
}

func newFixture(t *testing.T, mutate func(*splitter.Config), opts ...splitter.Option) *fixture {
	t.Helper()

	cfg := splitter.DefaultConfig()
	cfg.Observer = "noop"
	if mutate != nil {
		mutate(&cfg)
	}

	f := &fixture{
		transport: &recordingTransport{failOn: map[int]error{}},
		store:     conversation.NewMemoryStore(),
	}

	all := append([]splitter.Option{
		splitter.WithTransport(f.transport),
		splitter.WithStore(f.store),
		splitter.WithSleep(func(d time.Duration) { f.sleeps = append(f.sleeps, d) }),
	}, opts...)

	s, err := splitter.New(&cfg, all...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f.splitter = s
	return f
}

func text(items ...string) protocol.Sequence {
	seq := make(protocol.Sequence, len(items))
	for i, s := range items {
		seq[i] = protocol.NewText(s)
	}
	return seq
}

func TestNew_RequiresTransport(t *testing.T) {
	cfg := splitter.DefaultConfig()
	if _, err := splitter.New(&cfg); !errors.Is(err, splitter.ErrNoTransport) {
		t.Errorf("got %v, want ErrNoTransport", err)
	}
}

func TestNew_MalformedPatternFails(t *testing.T) {
	cfg := splitter.DefaultConfig()
	cfg.CleanRegex = "[unclosed"

	_, err := splitter.New(&cfg, splitter.WithTransport(&recordingTransport{}))
	if err == nil {
		t.Fatal("expected error for malformed clean pattern")
	}
}

func TestProcess_EmptyReply_PassThrough(t *testing.T) {
	f := newFixture(t, nil)

	out := f.splitter.Process(context.Background(), origin, nil)

	if out.Action != splitter.ActionPassThrough {
		t.Errorf("got action %v, want ActionPassThrough", out.Action)
	}
	if f.transport.calls != 0 {
		t.Errorf("transport called %d times, want 0", f.transport.calls)
	}
}

func TestProcess_NoMatchNoCleaning_PassThrough(t *testing.T) {
	f := newFixture(t, nil)
	f.store.StartConversation(origin)

	out := f.splitter.Process(context.Background(), origin, text("one paragraph, no blank line"))

	if out.Action != splitter.ActionPassThrough {
		t.Errorf("got action %v, want ActionPassThrough", out.Action)
	}
	if f.transport.calls != 0 {
		t.Errorf("transport called %d times, want 0", f.transport.calls)
	}

	// The no-op path must leave history alone too.
	id, _ := f.store.CurrentConversationID(context.Background(), origin)
	conv, _ := f.store.Conversation(context.Background(), origin, id)
	if conv.History != "" {
		t.Errorf("pass-through wrote history: %s", conv.History)
	}
}

func TestProcess_SplitsOnBlankLines(t *testing.T) {
	f := newFixture(t, nil)

	out := f.splitter.Process(context.Background(), origin, text("Hello\n\nWorld"))

	if out.Action != splitter.ActionTakeOver {
		t.Fatalf("got action %v, want ActionTakeOver", out.Action)
	}
	if len(f.transport.units) != 2 {
		t.Fatalf("got %d delivered units, want 2", len(f.transport.units))
	}
	if got := f.transport.units[0].PlainText(); got != "Hello" {
		t.Errorf("unit 1: got %q, want %q", got, "Hello")
	}
	if got := f.transport.units[1].PlainText(); got != "World" {
		t.Errorf("unit 2: got %q, want %q", got, "World")
	}
	if out.Delivered != 2 || out.Failed != 0 {
		t.Errorf("got delivered=%d failed=%d, want 2/0", out.Delivered, out.Failed)
	}
	if f.transport.origins[0] != origin {
		t.Errorf("delivered to %q, want %q", f.transport.origins[0], origin)
	}
}

func TestProcess_OpaqueItemStaysInFirstUnit(t *testing.T) {
	f := newFixture(t, nil)

	reply := protocol.Sequence{
		protocol.NewText("A"),
		protocol.Opaque{Kind: "image", Payload: "img"},
		protocol.NewText("B\n\nC"),
	}
	out := f.splitter.Process(context.Background(), origin, reply)

	if out.Action != splitter.ActionTakeOver {
		t.Fatalf("got action %v, want ActionTakeOver", out.Action)
	}
	if len(f.transport.units) != 2 {
		t.Fatalf("got %d units, want 2", len(f.transport.units))
	}

	first := f.transport.units[0]
	if len(first) != 3 {
		t.Fatalf("unit 1: got %d items, want 3", len(first))
	}
	if _, ok := first[1].(protocol.Opaque); !ok {
		t.Errorf("unit 1 item 2: got %T, want Opaque", first[1])
	}
	if got := f.transport.units[1].PlainText(); got != "C" {
		t.Errorf("unit 2: got %q, want %q", got, "C")
	}
}

func TestProcess_CleaningAloneTriggersTakeover(t *testing.T) {
	f := newFixture(t, func(cfg *splitter.Config) { cfg.CleanRegex = `\d+` })

	out := f.splitter.Process(context.Background(), origin, text("abc123"))

	if out.Action != splitter.ActionTakeOver {
		t.Fatalf("got action %v, want ActionTakeOver (cleaning active)", out.Action)
	}
	if len(f.transport.units) != 1 {
		t.Fatalf("got %d units, want 1", len(f.transport.units))
	}
	if got := f.transport.units[0].PlainText(); got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
	if len(f.sleeps) != 0 {
		t.Errorf("slept %d times for a single unit, want 0", len(f.sleeps))
	}
}

// Cleaning can empty the whole reply: zero units, nothing delivered, yet
// the pass still takes over (suppressing the original) and history still
// records the pre-clean text. Inherited behavior, preserved as-is.
func TestProcess_CleanedToNothing_TakesOverSilently(t *testing.T) {
	f := newFixture(t, func(cfg *splitter.Config) { cfg.CleanRegex = `\d+` })
	f.store.StartConversation(origin)

	out := f.splitter.Process(context.Background(), origin, text("123"))

	if out.Action != splitter.ActionTakeOver {
		t.Fatalf("got action %v, want ActionTakeOver", out.Action)
	}
	if len(out.Units) != 0 || f.transport.calls != 0 {
		t.Errorf("got %d units, %d transport calls, want 0/0", len(out.Units), f.transport.calls)
	}
	if !out.HistorySaved {
		t.Error("history should still capture the pre-clean text")
	}

	id, _ := f.store.CurrentConversationID(context.Background(), origin)
	conv, _ := f.store.Conversation(context.Background(), origin, id)
	msgs := conversation.Records(conv.History)
	if len(msgs) != 1 || msgs[0].Content != "123" {
		t.Errorf("got history %v, want one assistant record %q", msgs, "123")
	}
}

func TestProcess_HistoryUsesPreCleanText(t *testing.T) {
	f := newFixture(t, func(cfg *splitter.Config) { cfg.CleanRegex = `\d+` })
	f.store.StartConversation(origin)

	f.splitter.Process(context.Background(), origin, protocol.Sequence{
		protocol.NewText("abc123\n\n"),
		protocol.Opaque{Kind: "image"},
		protocol.NewText("def456"),
	})

	id, _ := f.store.CurrentConversationID(context.Background(), origin)
	conv, _ := f.store.Conversation(context.Background(), origin, id)
	msgs := conversation.Records(conv.History)
	if len(msgs) != 1 {
		t.Fatalf("got %d history records, want 1", len(msgs))
	}
	if msgs[0].Role != protocol.RoleAssistant {
		t.Errorf("got role %q, want assistant", msgs[0].Role)
	}
	// Original text with separators and digits intact, opaque skipped.
	if msgs[0].Content != "abc123\n\ndef456" {
		t.Errorf("got content %q, want pre-clean text", msgs[0].Content)
	}
}

func TestProcess_NoConversation_SkipsHistoryNotDelivery(t *testing.T) {
	f := newFixture(t, nil) // no conversation started

	out := f.splitter.Process(context.Background(), origin, text("a\n\nb"))

	if out.Action != splitter.ActionTakeOver {
		t.Fatalf("got action %v, want ActionTakeOver", out.Action)
	}
	if out.HistorySaved {
		t.Error("history should be skipped without a current conversation")
	}
	if out.Delivered != 2 {
		t.Errorf("got %d delivered, want 2 despite skipped history", out.Delivered)
	}
}

func TestProcess_DeliveryFailureDoesNotAbortRemainingUnits(t *testing.T) {
	f := newFixture(t, nil)
	f.transport.failOn[1] = errors.New("adapter down")

	out := f.splitter.Process(context.Background(), origin, text("a\n\nb"))

	if out.Failed != 1 || out.Delivered != 1 {
		t.Errorf("got delivered=%d failed=%d, want 1/1", out.Delivered, out.Failed)
	}
	if len(f.transport.units) != 1 || f.transport.units[0].PlainText() != "b" {
		t.Errorf("unit 2 not attempted after unit 1 failure: %v", f.transport.units)
	}
	// Delay still honored before the second attempt.
	if len(f.sleeps) != 1 {
		t.Errorf("slept %d times, want 1", len(f.sleeps))
	}
}

func TestProcess_DelayBetweenUnitsOnly(t *testing.T) {
	f := newFixture(t, func(cfg *splitter.Config) { cfg.Delay = 2.5 })

	f.splitter.Process(context.Background(), origin, text("a\n\nb\n\nc"))

	if len(f.sleeps) != 2 {
		t.Fatalf("slept %d times for 3 units, want 2", len(f.sleeps))
	}
	for i, d := range f.sleeps {
		if d != 2500*time.Millisecond {
			t.Errorf("sleep %d: got %v, want 2.5s", i, d)
		}
	}
}

func TestProcess_UnitsDeliveredInOrder(t *testing.T) {
	f := newFixture(t, nil)

	f.splitter.Process(context.Background(), origin, text("1\n\n2\n\n3\n\n4"))

	var got []string
	for _, u := range f.transport.units {
		got = append(got, u.PlainText())
	}
	if strings.Join(got, ",") != "1,2,3,4" {
		t.Errorf("got order %v, want 1,2,3,4", got)
	}
}
