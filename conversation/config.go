package conversation

// Config holds conversation store initialization parameters.
type Config struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"` // FileStore root directory; empty selects the in-memory store.
}

// DefaultConfig returns the default conversation configuration
// (in-memory store).
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
}

// NewStore creates a Store from configuration: a FileStore when Path is
// set, a MemoryStore otherwise.
func NewStore(cfg *Config) (Store, error) {
	if cfg.Path == "" {
		return NewMemoryStore(), nil
	}
	return NewFileStore(cfg.Path), nil
}
