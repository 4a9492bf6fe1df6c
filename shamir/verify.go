package shamir

import (
	"github.com/vitalvas/sharekit/gf256"
)

// VerifyShares checks that all provided shares are mutually consistent: the
// first Threshold shares define the polynomials and every further share
// must lie on them. A corrupted or foreign share is detected without the
// secret whenever more than Threshold shares are available.
//
// The parameter checks match Reconstruct. Exactly Threshold shares always
// verify.
func VerifyShares(shares []Share) error {
	if len(shares) == 0 {
		return insufficient(1, 0)
	}

	threshold := int(shares[0].Threshold)
	if len(shares) < threshold {
		return insufficient(threshold, len(shares))
	}

	first := shares[0]
	for _, share := range shares[1:] {
		if share.Threshold != first.Threshold ||
			len(share.Data) != len(first.Data) ||
			share.IntegrityCheck != first.IntegrityCheck ||
			share.Compression != first.Compression {
			return ErrInconsistentShareLength
		}
	}

	xs := make([]uint8, len(shares))
	for i, share := range shares {
		xs[i] = share.Index
	}

	// duplicate and zero index check
	if _, err := lagrangeAtZero(xs); err != nil {
		return err
	}

	base := shares[:threshold]
	baseXs := xs[:threshold]

	for _, extra := range shares[threshold:] {
		basis := lagrangeAt(baseXs, gf256.Element(extra.Index))

		var diff byte
		for idx, want := range extra.Data {
			acc := gf256.Zero
			for i, l := range basis {
				acc = acc.Add(l.Mul(gf256.Element(base[i].Data[idx])))
			}
			diff |= byte(acc) ^ want
		}

		if diff != 0 {
			return ErrVerificationFailed
		}
	}

	return nil
}

// lagrangeAt returns the Lagrange basis L_i(x) for distinct nonzero xs.
func lagrangeAt(xs []uint8, x gf256.Element) []gf256.Element {
	basis := make([]gf256.Element, len(xs))

	for i, xi := range xs {
		numerator := gf256.One
		denominator := gf256.One

		for j, xj := range xs {
			if i == j {
				continue
			}

			// numerator *= (x - x_j)
			numerator = numerator.Mul(x.Sub(gf256.Element(xj)))

			// denominator *= (x_i - x_j)
			denominator = denominator.Mul(gf256.Element(xi).Sub(gf256.Element(xj)))
		}

		// distinct xs make the denominator nonzero
		inv, _ := denominator.Inverse()
		basis[i] = numerator.Mul(inv)
	}

	return basis
}
