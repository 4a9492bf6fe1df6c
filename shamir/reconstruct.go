package shamir

import (
	"github.com/vitalvas/sharekit/gf256"
	"github.com/vitalvas/sharekit/securemem"
	"github.com/vitalvas/sharekit/workpool"
)

// parallelMinBytes is the share length from which interpolation is spread
// over workers.
const parallelMinBytes = 64 * 1024

// Reconstruct recovers the secret from at least Threshold shares of one
// dealing. Shares are checked in order: non-empty, enough of them, equal
// lengths and flags, then distinct nonzero indices.
func Reconstruct(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, insufficient(1, 0)
	}

	threshold := int(shares[0].Threshold)
	if len(shares) < threshold {
		return nil, insufficient(threshold, len(shares))
	}

	first := shares[0]
	for _, share := range shares[1:] {
		if len(share.Data) != len(first.Data) ||
			share.IntegrityCheck != first.IntegrityCheck ||
			share.Compression != first.Compression {
			return nil, ErrInconsistentShareLength
		}
	}

	xs := make([]uint8, len(shares))
	data := make([][]byte, len(shares))
	for i, share := range shares {
		xs[i] = share.Index
		data[i] = share.Data
	}

	coefficients, err := lagrangeAtZero(xs)
	if err != nil {
		return nil, err
	}

	combined := combine(coefficients, data)
	defer combined.Destroy()

	return unpack(combined.Bytes(), first.IntegrityCheck, first.Compression)
}

// combine interpolates every byte position at x = 0 given the Lagrange
// coefficients of the share indices. All data slices must have equal length.
func combine(coefficients []gf256.Element, data [][]byte) *securemem.Buffer {
	length := len(data[0])
	out := securemem.New(length)
	dst := out.Bytes()

	workers := 1
	if length >= parallelMinBytes {
		workers = workpool.Workers()
	}

	workpool.Range(length, workers, func(start, end int) {
		for idx := start; idx < end; idx++ {
			acc := gf256.Zero
			for i, l := range coefficients {
				acc = acc.Add(l.Mul(gf256.Element(data[i][idx])))
			}
			dst[idx] = byte(acc)
		}
	})

	return out
}

// lagrangeAtZero returns L_i(0) for each x_i, computed as
// P * x_i^-1 * (prod_{j != i} (x_i + x_j))^-1 where P is the product of all x.
// Zero or repeated indices yield ErrInvalidShareFormat.
func lagrangeAtZero(xs []uint8) ([]gf256.Element, error) {
	var seen [256]bool
	for _, x := range xs {
		if x == 0 || seen[x] {
			return nil, ErrInvalidShareFormat
		}
		seen[x] = true
	}

	product := gf256.One
	for _, x := range xs {
		product = product.Mul(gf256.Element(x))
	}

	coefficients := make([]gf256.Element, len(xs))
	for i, xi := range xs {
		xiInv, ok := gf256.Element(xi).Inverse()
		if !ok {
			return nil, ErrInvalidShareFormat
		}

		denominator := gf256.One
		for j, xj := range xs {
			if i != j {
				denominator = denominator.Mul(gf256.Element(xi).Sub(gf256.Element(xj)))
			}
		}

		denominatorInv, ok := denominator.Inverse()
		if !ok {
			return nil, ErrInvalidShareFormat
		}

		coefficients[i] = product.Mul(xiInv).Mul(denominatorInv)
	}

	return coefficients, nil
}
