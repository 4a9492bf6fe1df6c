// Package securemem holds sensitive bytes (raw secrets, polynomial
// coefficients, reconstructed plaintext) in buffers that are overwritten with
// zeros when released.
//
// Pages are locked into RAM where the platform allows it. Locking is best
// effort: a failure (for example a low RLIMIT_MEMLOCK) leaves the buffer
// usable but swappable. The lock works on whole pages and is not reference
// counted, so destroying one buffer can unlock a page it shares with another
// live buffer.
package securemem

import "crypto/subtle"

// Buffer is a fixed-size byte buffer that is zeroed on Destroy.
// The zero value is an empty, already destroyed buffer.
type Buffer struct {
	data   []byte
	locked bool
}

// New allocates a zero-filled buffer of n bytes.
func New(n int) *Buffer {
	b := &Buffer{data: make([]byte, n)}
	b.locked = lock(b.data)
	return b
}

// From copies src into a new buffer. src itself is left untouched.
func From(src []byte) *Buffer {
	b := New(len(src))
	copy(b.data, src)
	return b
}

// Bytes returns the underlying slice. It is only valid until Destroy.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the buffer length.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Locked reports whether the buffer pages were locked into memory.
func (b *Buffer) Locked() bool {
	return b != nil && b.locked
}

// Destroy zeroes the buffer and releases the memory lock. It is safe to
// call more than once and on a nil Buffer, so it can always be deferred.
func (b *Buffer) Destroy() {
	if b == nil || b.data == nil {
		return
	}

	Zero(b.data)
	if b.locked {
		unlock(b.data)
		b.locked = false
	}
	b.data = nil
}

// Zero overwrites b with zeros in a way the compiler does not elide.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zeros := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zeros)
}

// ZeroAll zeroes every slice.
func ZeroAll(slices ...[]byte) {
	for _, s := range slices {
		Zero(s)
	}
}
