package shamir

import "iter"

// Dealer produces shares lazily from one set of polynomials, at indices
// 1, 2, ... up to 255. It is exhausted after index 255 or Close.
//
// Shares from one Dealer share the same polynomials: the first n of them are
// exactly what Split would return for the same coefficients.
type Dealer struct {
	polys *polynomials
	next  uint8 // 0 once exhausted
}

// Dealer prepares secret and returns a Dealer for it. Close the Dealer when
// done to zero the precomputed state early.
func (s *Scheme) Dealer(secret []byte) (*Dealer, error) {
	polys, err := s.deal(secret)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("dealer created",
		"threshold", s.threshold,
		"secret_bytes", len(secret),
		"share_bytes", polys.length,
	)

	return &Dealer{polys: polys, next: 1}, nil
}

// Next returns the next share, or false once the dealer is exhausted.
func (d *Dealer) Next() (Share, bool) {
	if d.next == 0 {
		return Share{}, false
	}

	share := d.polys.share(d.next)

	d.next++
	if d.next == 0 {
		d.Close()
	}

	return share, true
}

// Remaining returns the exact number of shares Next will still produce.
func (d *Dealer) Remaining() int {
	if d.next == 0 {
		return 0
	}
	return MaxShares + 1 - int(d.next)
}

// Take returns up to n further shares.
func (d *Dealer) Take(n int) []Share {
	n = min(max(n, 0), d.Remaining())

	shares := make([]Share, 0, n)
	for range n {
		share, _ := d.Next()
		shares = append(shares, share)
	}

	return shares
}

// All yields the remaining shares in index order.
//
//	for share := range dealer.All() {
//		...
//	}
func (d *Dealer) All() iter.Seq[Share] {
	return func(yield func(Share) bool) {
		for {
			share, ok := d.Next()
			if !ok || !yield(share) {
				return
			}
		}
	}
}

// Close zeroes the polynomials. The dealer yields nothing afterwards.
func (d *Dealer) Close() {
	d.polys.destroy()
	d.polys = nil
	d.next = 0
}
