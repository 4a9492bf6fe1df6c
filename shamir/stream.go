package shamir

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vitalvas/sharekit/gf256"
	"github.com/vitalvas/sharekit/securemem"
)

// Stream layout, per share stream:
//
//	header: flags(1) | index(1)
//	record: len(4, LE) | data(len)    repeated once per source chunk
//
// Every chunk is prepared and split independently, with its own integrity
// hash and its own random polynomials. A stream ends cleanly when every
// share stream ends at the same record boundary.
const (
	streamHeaderSize = 2
	recordHeaderSize = 4
)

type flusher interface {
	Flush() error
}

// SplitStream reads src in Config.ChunkSize chunks and writes one share
// stream to each of the TotalShares destinations. dsts[i] receives the share
// with index i+1. Destinations implementing Flush() error are flushed at the
// end.
func (s *Scheme) SplitStream(src io.Reader, dsts []io.Writer) error {
	if len(dsts) != int(s.totalShares) {
		return fmt.Errorf("%w: expected %d destinations, got %d", ErrInvalidConfig, s.totalShares, len(dsts))
	}

	flags := encodeFlags(s.config.IntegrityCheck, s.config.Compression)
	for i, dst := range dsts {
		if _, err := dst.Write([]byte{flags, uint8(i + 1)}); err != nil {
			return ioError(err)
		}
	}

	chunk := securemem.New(s.config.ChunkSize)
	defer chunk.Destroy()

	var (
		lenBuf [recordHeaderSize]byte
		chunks int
		total  int64
	)

	for {
		n, err := io.ReadFull(src, chunk.Bytes())
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return ioError(err)
		}

		if n > 0 {
			if werr := s.writeChunk(chunk.Bytes()[:n], dsts, lenBuf[:]); werr != nil {
				return werr
			}
			chunks++
			total += int64(n)
		}

		if err != nil {
			break
		}
	}

	for _, dst := range dsts {
		if f, ok := dst.(flusher); ok {
			if err := f.Flush(); err != nil {
				return ioError(err)
			}
		}
	}

	s.logger.Debug("stream split",
		"shares", len(dsts),
		"threshold", s.threshold,
		"chunks", chunks,
		"bytes", total,
	)

	return nil
}

func (s *Scheme) writeChunk(chunk []byte, dsts []io.Writer, lenBuf []byte) error {
	shares, err := s.Split(chunk)
	if err != nil {
		return err
	}
	defer ZeroizeShares(shares)

	for i, share := range shares {
		binary.LittleEndian.PutUint32(lenBuf, uint32(len(share.Data)))

		if _, err := dsts[i].Write(lenBuf); err != nil {
			return ioError(err)
		}
		if _, err := dsts[i].Write(share.Data); err != nil {
			return ioError(err)
		}
	}

	return nil
}

// ReconstructStream reads share streams written by SplitStream and writes
// the recovered secret to dst. All sources must carry the same flags and
// distinct indices.
//
// The threshold is not part of the stream: with fewer sources than the
// threshold the output is garbage, which the integrity check rejects when
// it is enabled.
func ReconstructStream(srcs []io.Reader, dst io.Writer) error {
	if len(srcs) == 0 {
		return insufficient(1, 0)
	}

	xs := make([]uint8, len(srcs))

	var flags byte
	for i, src := range srcs {
		var hdr [streamHeaderSize]byte
		if _, err := io.ReadFull(src, hdr[:]); err != nil {
			return ioError(err)
		}

		if i == 0 {
			flags = hdr[0]
		} else if hdr[0] != flags {
			return fmt.Errorf("%w: stream %d flags %#x differ from %#x", ErrInvalidConfig, i, hdr[0], flags)
		}

		xs[i] = hdr[1]
	}

	if flags&^flagsMask != 0 {
		return fmt.Errorf("%w: unknown stream flags %#x", ErrInvalidConfig, flags)
	}

	integrity, compression := decodeFlags(flags)

	coefficients, err := lagrangeAtZero(xs)
	if err != nil {
		return err
	}

	bufs := make([]bytes.Buffer, len(srcs))
	data := make([][]byte, len(srcs))
	lengths := make([]uint32, len(srcs))

	defer func() {
		for i := range bufs {
			securemem.Zero(bufs[i].Bytes())
		}
	}()

	var lenBuf [recordHeaderSize]byte

	for {
		ended := 0
		for i, src := range srcs {
			_, err := io.ReadFull(src, lenBuf[:])
			if errors.Is(err, io.EOF) {
				ended++
				continue
			}
			if err != nil {
				return ioError(err)
			}
			lengths[i] = binary.LittleEndian.Uint32(lenBuf[:])
		}

		if ended == len(srcs) {
			break
		}
		if ended > 0 {
			return ioError(io.ErrUnexpectedEOF)
		}

		for _, l := range lengths[1:] {
			if l != lengths[0] {
				return ErrInconsistentShareLength
			}
		}

		for i, src := range srcs {
			securemem.Zero(bufs[i].Bytes())
			bufs[i].Reset()

			if _, err := io.CopyN(&bufs[i], src, int64(lengths[i])); err != nil {
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				return ioError(err)
			}
			data[i] = bufs[i].Bytes()
		}

		if err := writeRecord(coefficients, data, integrity, compression, dst); err != nil {
			return err
		}
	}

	if f, ok := dst.(flusher); ok {
		if err := f.Flush(); err != nil {
			return ioError(err)
		}
	}

	return nil
}

func writeRecord(coefficients []gf256.Element, data [][]byte, integrity, compression bool, dst io.Writer) error {
	combined := combine(coefficients, data)
	defer combined.Destroy()

	secret, err := unpack(combined.Bytes(), integrity, compression)
	if err != nil {
		return err
	}
	defer securemem.Zero(secret)

	if _, err := dst.Write(secret); err != nil {
		return ioError(err)
	}

	return nil
}
