package shamir

import (
	"github.com/vitalvas/sharekit/gf256"
	"github.com/vitalvas/sharekit/securemem"
	"github.com/vitalvas/sharekit/workpool"
)

// RefreshShares re-randomizes shares without reconstructing the secret. A
// random polynomial with zero constant term is added to every byte
// position, so the refreshed shares reconstruct the same secret while old
// and new shares cannot be mixed.
//
// All holders must refresh together. The input shares are not modified.
func (s *Scheme) RefreshShares(shares []Share) ([]Share, error) {
	if len(shares) == 0 {
		return nil, insufficient(1, 0)
	}

	if len(shares) < int(s.threshold) {
		return nil, insufficient(int(s.threshold), len(shares))
	}

	first := shares[0]
	for _, share := range shares[1:] {
		if len(share.Data) != len(first.Data) || share.IntegrityCheck != first.IntegrityCheck {
			return nil, ErrInconsistentShareLength
		}
	}

	zero, err := newPolynomials(nil, len(first.Data), int(s.threshold)-1, s.rng, shareParams{})
	if err != nil {
		return nil, err
	}
	defer zero.destroy()

	refreshed := make([]Share, len(shares))
	for i, share := range shares {
		refreshed[i] = share.Clone()
	}

	workpool.Range(len(refreshed), s.workers(), func(start, end int) {
		delta := make([]byte, zero.length)
		defer securemem.Zero(delta)

		for i := start; i < end; i++ {
			zero.evaluate(gf256.Element(refreshed[i].Index), delta)
			for idx, d := range delta {
				refreshed[i].Data[idx] ^= d
			}
		}
	})

	s.logger.Debug("shares refreshed",
		"shares", len(refreshed),
		"threshold", s.threshold,
		"share_bytes", zero.length,
	)

	return refreshed, nil
}
