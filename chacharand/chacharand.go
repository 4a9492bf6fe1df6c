// Package chacharand provides a ChaCha20 keystream CSPRNG seeded from the
// operating system's entropy source.
//
// A Reader is exclusively owned mutable state. It is not safe for concurrent
// use; give each goroutine its own Reader instead of sharing one.
package chacharand

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20"
)

// reseedInterval bounds the keystream drawn from one key. The 32-bit block
// counter of chacha20 wraps at 256 GiB; reseeding well before that keeps
// the cipher from panicking on counter overflow.
const reseedInterval = 1 << 36

// ErrNilSource is returned when a Reader is seeded from a nil source.
var ErrNilSource = errors.New("chacharand: nil entropy source")

// Reader is an io.Reader producing ChaCha20 keystream bytes.
type Reader struct {
	source io.Reader
	cipher *chacha20.Cipher
	drawn  uint64
}

// New returns a Reader seeded from crypto/rand.
func New() (*Reader, error) {
	return NewFromSource(rand.Reader)
}

// NewFromSource returns a Reader whose key and nonce (and every reseed)
// are read from source.
func NewFromSource(source io.Reader) (*Reader, error) {
	if source == nil {
		return nil, ErrNilSource
	}

	r := &Reader{source: source}
	if err := r.reseed(); err != nil {
		return nil, err
	}

	return r, nil
}

// Read fills p with keystream bytes. It never returns a short read unless
// reseeding from the entropy source fails.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.drawn >= reseedInterval {
			if err := r.reseed(); err != nil {
				return n, err
			}
		}

		step := len(p) - n
		if remaining := reseedInterval - r.drawn; uint64(step) > remaining {
			step = int(remaining)
		}

		out := p[n : n+step]
		clear(out)
		r.cipher.XORKeyStream(out, out)

		r.drawn += uint64(step)
		n += step
	}

	return n, nil
}

func (r *Reader) reseed() error {
	var seed [chacha20.KeySize + chacha20.NonceSize]byte
	defer clear(seed[:])

	if _, err := io.ReadFull(r.source, seed[:]); err != nil {
		return err
	}

	cipher, err := chacha20.NewUnauthenticatedCipher(seed[:chacha20.KeySize], seed[chacha20.KeySize:])
	if err != nil {
		return err
	}

	r.cipher = cipher
	r.drawn = 0

	return nil
}
