package shamir

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"

	"github.com/vitalvas/sharekit/securemem"
)

const (
	flagIntegrity   = 1 << 0
	flagCompression = 1 << 1
	flagsMask       = flagIntegrity | flagCompression
)

// Share is one point of the per-byte polynomials plus the parameters needed
// to reconstruct. Index is never zero; index 0 is where the secret lives.
type Share struct {
	// Index is the x-coordinate, 1..255.
	Index uint8
	// Data holds one field element per prepared secret byte.
	Data []byte
	// Threshold is the minimum number of shares required for reconstruction.
	Threshold uint8
	// TotalShares is the number of shares the scheme was configured for.
	TotalShares uint8
	// IntegrityCheck reports that Data carries a SHA-256 prefix.
	IntegrityCheck bool
	// Compression reports that the secret was zstd-compressed before splitting.
	Compression bool
}

// shareMagic and the fixed header that precedes Data in the binary form.
const (
	shareMagic      = "SHS1"
	shareVersion    = 2
	shareHeaderSize = len(shareMagic) + 1 + 1 + 1 + 1 + 1 + 4 // magic + version + flags + index + threshold + total + len
)

// Flags returns the option byte used on the wire: bit 0 integrity, bit 1 compression.
func (s Share) Flags() byte {
	return encodeFlags(s.IntegrityCheck, s.Compression)
}

func encodeFlags(integrity, compression bool) byte {
	var flags byte
	if integrity {
		flags |= flagIntegrity
	}
	if compression {
		flags |= flagCompression
	}
	return flags
}

func decodeFlags(flags byte) (integrity, compression bool) {
	return flags&flagIntegrity != 0, flags&flagCompression != 0
}

// MarshalBinary serializes the share.
// Format: "SHS1" | version(1) | flags(1) | index(1) | threshold(1) | total(1) | len(4, LE) | data
func (s Share) MarshalBinary() ([]byte, error) {
	if s.Index == 0 {
		return nil, ErrInvalidShareFormat
	}
	if uint64(len(s.Data)) > math.MaxUint32 {
		return nil, ErrInvalidShareFormat
	}

	buf := make([]byte, shareHeaderSize+len(s.Data))

	n := copy(buf, shareMagic)
	buf[n] = shareVersion
	buf[n+1] = s.Flags()
	buf[n+2] = s.Index
	buf[n+3] = s.Threshold
	buf[n+4] = s.TotalShares
	binary.LittleEndian.PutUint32(buf[n+5:shareHeaderSize], uint32(len(s.Data)))

	copy(buf[shareHeaderSize:], s.Data)

	return buf, nil
}

// UnmarshalBinary parses the form written by MarshalBinary. Any malformed
// input yields ErrInvalidShareFormat.
func (s *Share) UnmarshalBinary(data []byte) error {
	if len(data) < shareHeaderSize {
		return ErrInvalidShareFormat
	}

	if string(data[:len(shareMagic)]) != shareMagic {
		return ErrInvalidShareFormat
	}

	hdr := data[len(shareMagic):shareHeaderSize]
	version, flags, index, threshold, total := hdr[0], hdr[1], hdr[2], hdr[3], hdr[4]

	switch {
	case version != shareVersion,
		flags&^flagsMask != 0,
		index == 0,
		threshold == 0,
		total == 0,
		threshold > total:
		return ErrInvalidShareFormat
	}

	dataLen := binary.LittleEndian.Uint32(hdr[5:])
	if uint64(len(data)-shareHeaderSize) != uint64(dataLen) {
		return ErrInvalidShareFormat
	}

	integrity, compression := decodeFlags(flags)

	*s = Share{
		Index:          index,
		Data:           append([]byte(nil), data[shareHeaderSize:]...),
		Threshold:      threshold,
		TotalShares:    total,
		IntegrityCheck: integrity,
		Compression:    compression,
	}

	return nil
}

// ParseShare deserializes a share from binary format.
func ParseShare(data []byte) (Share, error) {
	var s Share
	if err := s.UnmarshalBinary(data); err != nil {
		return Share{}, err
	}
	return s, nil
}

// String returns the share as a base64-encoded string. A share that cannot
// be serialized renders as an empty string.
func (s Share) String() string {
	data, err := s.MarshalBinary()
	if err != nil {
		return ""
	}
	defer securemem.Zero(data)

	return base64.StdEncoding.EncodeToString(data)
}

// ParseShareString deserializes a share from a base64-encoded string.
func ParseShareString(str string) (Share, error) {
	data, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		return Share{}, errors.Join(ErrInvalidShareFormat, err)
	}
	defer securemem.Zero(data)

	return ParseShare(data)
}

// Clone creates a deep copy of the share.
func (s Share) Clone() Share {
	c := s
	c.Data = append([]byte(nil), s.Data...)
	return c
}

// Equal reports whether two shares are identical. Data is compared in
// constant time.
func (s Share) Equal(other Share) bool {
	if s.Index != other.Index ||
		s.Threshold != other.Threshold ||
		s.TotalShares != other.TotalShares ||
		s.IntegrityCheck != other.IntegrityCheck ||
		s.Compression != other.Compression {
		return false
	}

	return subtle.ConstantTimeCompare(s.Data, other.Data) == 1
}

// Zeroize overwrites the share data with zeros.
func (s *Share) Zeroize() {
	securemem.Zero(s.Data)
}

// ZeroizeShares zeroes the data of every share.
func ZeroizeShares(shares []Share) {
	for i := range shares {
		shares[i].Zeroize()
	}
}
