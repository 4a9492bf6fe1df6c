// Package gf256 implements arithmetic in GF(2^8) under the AES reduction
// polynomial x^8 + x^4 + x^3 + x + 1 (0x11B).
//
// Multiplication runs a fixed 8-round loop and inversion a fixed
// square-and-multiply chain, so neither depends on operand values for its
// iteration count. There are no log/exp lookup tables.
package gf256

// Element is a single field element.
type Element uint8

const (
	// Zero is the additive identity.
	Zero Element = 0
	// One is the multiplicative identity.
	One Element = 1

	// reduction is x^8 + x^4 + x^3 + x + 1 with the x^8 term dropped.
	reduction = 0x1B
)

// Add adds two elements. Addition is XOR in characteristic 2.
func (a Element) Add(b Element) Element {
	return a ^ b
}

// Sub subtracts b from a. It is identical to Add.
func (a Element) Sub(b Element) Element {
	return a ^ b
}

// Mul multiplies two elements using Russian peasant multiplication.
func (a Element) Mul(b Element) Element {
	return Element(mul(uint8(a), uint8(b)))
}

// Inverse returns the multiplicative inverse of a. Zero has no inverse and
// reports false; callers must treat that as an error.
func (a Element) Inverse() (Element, bool) {
	if a == 0 {
		return 0, false
	}
	return Element(inverse(uint8(a))), true
}

// Exp raises a to the power n by square-and-multiply.
func (a Element) Exp(n uint32) Element {
	result := One
	base := a
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

func mul(a, b uint8) uint8 {
	var r uint8
	for range 8 {
		// mask is 0xFF when the low bit of b is set, 0x00 otherwise
		r ^= a & -(b & 1)
		hiBit := a >> 7
		a <<= 1
		a ^= reduction & -hiBit
		b >>= 1
	}
	return r
}

// inverse computes a^254 (= a^-1, since the multiplicative group has order 255).
func inverse(a uint8) uint8 {
	b := mul(a, a)   // a^2
	c := mul(a, b)   // a^3
	b = mul(c, c)    // a^6
	b = mul(b, b)    // a^12
	c = mul(b, c)    // a^15
	b = mul(b, b)    // a^24
	b = mul(b, b)    // a^48
	b = mul(b, c)    // a^63
	b = mul(b, b)    // a^126
	b = mul(a, b)    // a^127
	return mul(b, b) // a^254
}
