// Command splitter runs a reply through the splitting pipeline and
// prints each delivery unit, for trying out split and clean patterns
// before wiring the library into a host.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/tailored-agentic-units/splitter/conversation"
	"github.com/tailored-agentic-units/splitter/core/protocol"
	"github.com/tailored-agentic-units/splitter/splitter"
	"github.com/tailored-agentic-units/splitter/transport"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to config file (JSON or YAML)")
		origin      = flag.String("origin", "cli:session", "Origin identifier for delivery and history")
		text        = flag.String("text", "", "Reply text to process (default: read stdin)")
		splitRegex  = flag.String("split", "", "Split pattern (overrides config)")
		cleanRegex  = flag.String("clean", "", "Clean pattern (overrides config)")
		delay       = flag.Float64("delay", -1, "Seconds between units (overrides config)")
		showHistory = flag.Bool("show-history", false, "Print the captured conversation history afterwards")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := splitter.DefaultConfig()
	if *configFile != "" {
		loaded, err := splitter.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *splitRegex != "" {
		cfg.SplitRegex = *splitRegex
	}
	if *cleanRegex != "" {
		cfg.CleanRegex = *cleanRegex
	}
	if *delay >= 0 {
		cfg.Delay = *delay
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	reply := *text
	if reply == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("Failed to read stdin: %v", err)
		}
		reply = string(data)
	}
	if reply == "" {
		fmt.Fprintln(os.Stderr, "Usage: splitter -text <reply> [flags], or pipe the reply on stdin")
		flag.PrintDefaults()
		os.Exit(1)
	}

	store := conversation.NewMemoryStore()
	store.StartConversation(*origin)

	s, err := splitter.New(&cfg,
		splitter.WithTransport(transport.NewWriter(os.Stdout)),
		splitter.WithStore(store),
		splitter.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create splitter: %v", err)
	}

	ctx := context.Background()
	outcome := s.Process(ctx, *origin, protocol.Sequence{protocol.NewText(reply)})

	switch outcome.Action {
	case splitter.ActionPassThrough:
		fmt.Println("pass-through: reply unchanged, original path keeps it")
	case splitter.ActionTakeOver:
		fmt.Printf("take-over: %d units, %d delivered, %d failed\n",
			len(outcome.Units), outcome.Delivered, outcome.Failed)
	}

	if *showHistory {
		id, err := store.CurrentConversationID(ctx, *origin)
		if err != nil {
			log.Fatalf("No conversation: %v", err)
		}
		conv, err := store.Conversation(ctx, *origin, id)
		if err != nil {
			log.Fatalf("Failed to fetch conversation: %v", err)
		}
		fmt.Println("history:")
		for _, msg := range conversation.Records(conv.History) {
			fmt.Printf("  [%s] %s\n", msg.Role, msg.Content)
		}
	}
}
