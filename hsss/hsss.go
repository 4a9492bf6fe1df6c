// Package hsss implements hierarchical secret sharing on top of one master
// Shamir scheme. Each access level receives a contiguous block of the
// master shares, so a level's weight is simply its share count and any
// combination of holders with at least MasterThreshold shares in total
// recovers the secret.
package hsss

import (
	"fmt"
	"slices"

	"github.com/vitalvas/sharekit/shamir"
)

// AccessLevel is a named group that receives Count master shares.
type AccessLevel struct {
	Name  string
	Count int
}

// HierarchicalShare is the set of master shares dealt to one access level.
type HierarchicalShare struct {
	Level  string
	Shares []shamir.Share
}

// Scheme distributes one secret over several access levels.
type Scheme struct {
	master          *shamir.Scheme
	masterThreshold int
	levels          []AccessLevel
}

// Builder assembles access levels before a Scheme is built.
//
//	scheme, err := hsss.NewBuilder(5).
//		AddLevel("President", 5).
//		AddLevel("VP", 3).
//		Build()
type Builder struct {
	masterThreshold int
	levels          []AccessLevel
}

// NewBuilder starts a scheme needing masterThreshold shares in total.
func NewBuilder(masterThreshold int) *Builder {
	return &Builder{masterThreshold: masterThreshold}
}

// AddLevel appends an access level. Levels are dealt in the order added.
func (b *Builder) AddLevel(name string, count int) *Builder {
	b.levels = append(b.levels, AccessLevel{Name: name, Count: count})
	return b
}

// Build validates the levels and creates the master scheme.
func (b *Builder) Build(opts ...shamir.Option) (*Scheme, error) {
	return New(b.masterThreshold, b.levels, opts...)
}

// New creates a Scheme directly from a level list.
func New(masterThreshold int, levels []AccessLevel, opts ...shamir.Option) (*Scheme, error) {
	if masterThreshold <= 0 {
		return nil, fmt.Errorf("%w: master threshold %d", shamir.ErrInvalidThreshold, masterThreshold)
	}

	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no access levels", shamir.ErrInvalidConfig)
	}

	total := 0
	for _, level := range levels {
		if level.Count <= 0 || level.Count > shamir.MaxShares {
			return nil, fmt.Errorf("%w: level %q has %d shares", shamir.ErrInvalidShareCount, level.Name, level.Count)
		}
		total += level.Count
	}

	if total > shamir.MaxShares {
		return nil, fmt.Errorf("%w: %d shares across levels exceed %d", shamir.ErrInvalidConfig, total, shamir.MaxShares)
	}

	if masterThreshold > total {
		return nil, &shamir.ThresholdTooLargeError{Threshold: masterThreshold, TotalShares: total}
	}

	master, err := shamir.New(total, masterThreshold, opts...)
	if err != nil {
		return nil, err
	}

	return &Scheme{
		master:          master,
		masterThreshold: masterThreshold,
		levels:          slices.Clone(levels),
	}, nil
}

// Levels returns the access levels in dealing order.
func (s *Scheme) Levels() []AccessLevel {
	return slices.Clone(s.levels)
}

// Level looks up an access level by name.
func (s *Scheme) Level(name string) (AccessLevel, bool) {
	for _, level := range s.levels {
		if level.Name == name {
			return level, true
		}
	}
	return AccessLevel{}, false
}

// MasterThreshold returns the number of shares, across all levels, needed
// to reconstruct.
func (s *Scheme) MasterThreshold() int {
	return s.masterThreshold
}

// TotalShares returns the sum of all level counts.
func (s *Scheme) TotalShares() int {
	return s.master.TotalShares()
}

// SplitSecret deals the secret from one master dealer: the first level gets
// indices 1..count, the next level the following block, and so on.
func (s *Scheme) SplitSecret(secret []byte) ([]HierarchicalShare, error) {
	dealer, err := s.master.Dealer(secret)
	if err != nil {
		return nil, err
	}
	defer dealer.Close()

	return dealLevels(dealer, s.levels)
}

func dealLevels(dealer *shamir.Dealer, levels []AccessLevel) ([]HierarchicalShare, error) {
	out := make([]HierarchicalShare, 0, len(levels))
	for _, level := range levels {
		shares := dealer.Take(level.Count)
		if len(shares) != level.Count {
			shamir.ZeroizeShares(shares)
			for _, hs := range out {
				shamir.ZeroizeShares(hs.Shares)
			}
			return nil, fmt.Errorf("%w: level %q got %d of %d shares", shamir.ErrInvalidConfig, level.Name, len(shares), level.Count)
		}

		out = append(out, HierarchicalShare{
			Level:  level.Name,
			Shares: shares,
		})
	}

	return out, nil
}

// Reconstruct pools every share of the given levels and recovers the secret
// through the master scheme.
func (s *Scheme) Reconstruct(shares []HierarchicalShare) ([]byte, error) {
	return shamir.Reconstruct(flatten(shares))
}

// RefreshShares refreshes all levels' shares together through the master
// scheme and returns them grouped under the same level names.
func (s *Scheme) RefreshShares(shares []HierarchicalShare) ([]HierarchicalShare, error) {
	refreshed, err := s.master.RefreshShares(flatten(shares))
	if err != nil {
		return nil, err
	}

	out := make([]HierarchicalShare, len(shares))
	offset := 0
	for i, hs := range shares {
		out[i] = HierarchicalShare{
			Level:  hs.Level,
			Shares: refreshed[offset : offset+len(hs.Shares) : offset+len(hs.Shares)],
		}
		offset += len(hs.Shares)
	}

	return out, nil
}

func flatten(shares []HierarchicalShare) []shamir.Share {
	n := 0
	for _, hs := range shares {
		n += len(hs.Shares)
	}

	out := make([]shamir.Share, 0, n)
	for _, hs := range shares {
		out = append(out, hs.Shares...)
	}
	return out
}
