package shamir

import (
	"crypto/sha256"

	"github.com/vitalvas/sharekit/securemem"
)

// HashSize is the length of the integrity prefix.
const HashSize = sha256.Size

// prepare turns a secret into the bytes that become polynomial constant
// terms: sha256(secret) || payload with integrity on, payload otherwise,
// where payload is the secret or its zstd compression.
func prepare(secret []byte, integrity, compression bool) (*securemem.Buffer, error) {
	payload := secret
	if compression {
		compressed, err := compress(secret)
		if err != nil {
			return nil, err
		}
		defer securemem.Zero(compressed)
		payload = compressed
	}

	if !integrity {
		return securemem.From(payload), nil
	}

	buf := securemem.New(HashSize + len(payload))
	sum := sha256.Sum256(secret)
	copy(buf.Bytes(), sum[:])
	copy(buf.Bytes()[HashSize:], payload)
	securemem.Zero(sum[:])

	return buf, nil
}

// unpack reverses prepare. The returned slice is always a fresh allocation
// owned by the caller; data is left untouched.
func unpack(data []byte, integrity, compression bool) ([]byte, error) {
	var expected []byte
	body := data

	if integrity {
		if len(data) < HashSize {
			return nil, ErrIntegrityCheckFailed
		}
		expected, body = data[:HashSize], data[HashSize:]
	}

	var secret []byte
	if compression {
		out, err := decompress(body)
		if err != nil {
			return nil, err
		}
		secret = out
	} else {
		secret = append(make([]byte, 0, len(body)), body...)
	}

	if !integrity {
		return secret, nil
	}

	computed := sha256.Sum256(secret)

	var diff byte
	for i := range computed {
		diff |= computed[i] ^ expected[i]
	}

	if diff != 0 {
		securemem.ZeroAll(secret, computed[:])
		return nil, ErrIntegrityCheckFailed
	}

	securemem.Zero(computed[:])

	return secret, nil
}
