package shamir

import (
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// maxDecodedSize bounds the memory a single decompression may use, so a
// forged share set cannot expand into an arbitrarily large allocation.
const maxDecodedSize = 1 << 30

var (
	encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithZeroFrames(true),
		)
	})

	decoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil,
			zstd.WithDecoderMaxMemory(maxDecodedSize),
			zstd.WithDecoderConcurrency(0),
		)
	})
)

func compress(src []byte) ([]byte, error) {
	enc, err := encoder()
	if err != nil {
		return nil, errors.Join(ErrCompression, err)
	}

	return enc.EncodeAll(src, make([]byte, 0, len(src)/2+64)), nil
}

func decompress(src []byte) ([]byte, error) {
	dec, err := decoder()
	if err != nil {
		return nil, errors.Join(ErrDecompression, err)
	}

	out, err := dec.DecodeAll(src, nil)
	if err != nil {
		return nil, errors.Join(ErrDecompression, err)
	}

	if out == nil {
		out = []byte{}
	}

	return out, nil
}
