package shamir

import (
	"fmt"

	"github.com/vitalvas/sharekit/xconfig"
)

// DefaultChunkSize is the streaming chunk size used when none is configured.
const DefaultChunkSize = 1024 * 1024

// Mode selects how share evaluation is scheduled.
type Mode string

const (
	// ModeSequential evaluates every share on the calling goroutine.
	ModeSequential Mode = "sequential"
	// ModeParallel fans share evaluation out over GOMAXPROCS workers.
	ModeParallel Mode = "parallel"
)

// Config holds the tunables of a Scheme. It is immutable for the life of
// the scheme it was passed to.
type Config struct {
	// ChunkSize is the number of source bytes split per streaming record.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
	// Mode selects sequential or parallel evaluation.
	Mode Mode `yaml:"mode" json:"mode"`
	// Compression compresses the secret with zstd before splitting.
	Compression bool `yaml:"compression" json:"compression"`
	// IntegrityCheck prefixes a SHA-256 of the secret that is verified on reconstruction.
	IntegrityCheck bool `yaml:"integrity_check" json:"integrity_check"`
}

// DefaultConfig returns 1 MiB chunks, sequential mode, no compression and
// integrity checking enabled.
func DefaultConfig() Config {
	return Config{
		ChunkSize:      DefaultChunkSize,
		Mode:           ModeSequential,
		Compression:    false,
		IntegrityCheck: true,
	}
}

func (c *Config) Default() {
	*c = DefaultConfig()
}

// Validate checks the configuration. An empty Mode means sequential.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}

	switch c.Mode {
	case "", ModeSequential, ModeParallel:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}

	return nil
}

// LoadConfig builds a Config from DefaultConfig, then the given files and
// environment (see xconfig), and validates the result.
//
//	cfg, err := shamir.LoadConfig(xconfig.WithFiles("shamir.yaml"), xconfig.WithEnv("SHAMIR"))
func LoadConfig(opts ...xconfig.Option) (Config, error) {
	var cfg Config
	if err := xconfig.Load(&cfg, opts...); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
