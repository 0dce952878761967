package splitter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/splitter/conversation"
	"github.com/tailored-agentic-units/splitter/segment"
)

// DefaultSplitRegex splits on blank lines: a newline, optional
// whitespace, another newline.
const DefaultSplitRegex = `\n\s*\n`

const (
	defaultDelaySeconds = 1.0
	defaultObserver     = "slog"
)

// Config holds initialization parameters for the splitter pipeline.
type Config struct {
	// SplitRegex marks boundaries between delivery units. Matches are
	// removed from the delivered text.
	SplitRegex string `json:"split_regex,omitempty" yaml:"split_regex,omitempty"`
	// CleanRegex is removed from every text item before segmentation.
	// Empty disables cleaning.
	CleanRegex string `json:"clean_regex,omitempty" yaml:"clean_regex,omitempty"`
	// Delay is the pause between consecutive delivery units, in seconds.
	Delay float64 `json:"delay,omitempty" yaml:"delay,omitempty"`
	// Observer names a registered observability observer ("slog", "noop",
	// or one registered by the host).
	Observer string `json:"observer,omitempty" yaml:"observer,omitempty"`

	Conversation conversation.Config `json:"conversation" yaml:"conversation"`
}

// DefaultConfig returns a Config with sensible defaults: blank-line
// splitting, cleaning disabled, a one second inter-unit delay, slog
// observability, and an in-memory conversation store.
func DefaultConfig() Config {
	return Config{
		SplitRegex:   DefaultSplitRegex,
		Delay:        defaultDelaySeconds,
		Observer:     defaultObserver,
		Conversation: conversation.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Conversation.Merge(&source.Conversation)

	if source.SplitRegex != "" {
		c.SplitRegex = source.SplitRegex
	}
	if source.CleanRegex != "" {
		c.CleanRegex = source.CleanRegex
	}
	if source.Delay > 0 {
		c.Delay = source.Delay
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// Rules compiles the configured patterns. A malformed pattern surfaces
// here, at configuration time, never during reply processing.
func (c *Config) Rules() (*segment.Rules, error) {
	return segment.Compile(c.SplitRegex, c.CleanRegex)
}

// DelayDuration returns the inter-unit delay as a time.Duration.
func (c *Config) DelayDuration() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}

// LoadConfig reads a JSON or YAML config file (by extension), merges it
// over defaults, and returns the resulting Config. Pattern validity is
// checked so malformed patterns fail the load rather than a later reply.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Merge(&loaded)

	if _, err := cfg.Rules(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
