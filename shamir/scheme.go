// Package shamir implements Shamir's secret sharing over GF(2^8).
//
// Every byte of the (optionally hashed and compressed) secret is the
// constant term of its own random polynomial of degree threshold-1. Share i
// holds the evaluation of every polynomial at x = i. Any threshold shares
// recover the secret; fewer reveal nothing about it.
package shamir

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vitalvas/sharekit/chacharand"
	"github.com/vitalvas/sharekit/workpool"
	"github.com/vitalvas/sharekit/xlogger"
)

// MaxShares is the largest number of shares: the nonzero elements of GF(2^8).
const MaxShares = 255

// Scheme splits and refreshes secrets for fixed totalShares and threshold.
//
// A Scheme owns its random source and is not safe for concurrent use.
// Reconstruction needs no Scheme; see Reconstruct.
type Scheme struct {
	totalShares uint8
	threshold   uint8
	config      Config
	rng         io.Reader
	logger      *slog.Logger
}

type options struct {
	config Config
	rng    io.Reader
	logger *slog.Logger
}

// Option configures a Scheme.
type Option func(*options)

// WithConfig replaces DefaultConfig.
func WithConfig(config Config) Option {
	return func(o *options) {
		o.config = config
	}
}

// WithRand sets the source of polynomial coefficients. The reader must be
// cryptographically secure; by default a ChaCha20 generator seeded from the
// operating system is used.
func WithRand(rng io.Reader) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithLogger sets the logger. Only sizes and counts are logged, at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Scheme producing totalShares shares of which threshold are
// needed to reconstruct.
func New(totalShares, threshold int, opts ...Option) (*Scheme, error) {
	if totalShares <= 0 || totalShares > MaxShares {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShareCount, totalShares)
	}

	if threshold <= 0 || threshold > MaxShares {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}

	if threshold > totalShares {
		return nil, &ThresholdTooLargeError{Threshold: threshold, TotalShares: totalShares}
	}

	o := options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.config.Mode == "" {
		o.config.Mode = ModeSequential
	}

	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	if o.rng == nil {
		rng, err := chacharand.New()
		if err != nil {
			return nil, errors.Join(ErrIO, err)
		}
		o.rng = rng
	}

	return &Scheme{
		totalShares: uint8(totalShares),
		threshold:   uint8(threshold),
		config:      o.config,
		rng:         o.rng,
		logger:      xlogger.OrDiscard(o.logger),
	}, nil
}

// TotalShares returns the number of shares produced by Split.
func (s *Scheme) TotalShares() int {
	return int(s.totalShares)
}

// Threshold returns the number of shares needed to reconstruct.
func (s *Scheme) Threshold() int {
	return int(s.threshold)
}

// Config returns the scheme configuration.
func (s *Scheme) Config() Config {
	return s.config
}

func (s *Scheme) workers() int {
	if s.config.Mode == ModeParallel {
		return workpool.Workers()
	}
	return 1
}
