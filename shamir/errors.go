package shamir

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidThreshold is returned when threshold is outside 1..255.
	ErrInvalidThreshold = errors.New("shamir: invalid threshold")

	// ErrInvalidShareCount is returned when total shares is outside 1..255.
	ErrInvalidShareCount = errors.New("shamir: invalid share count")

	// ErrThresholdTooLarge is returned when threshold exceeds total shares.
	ErrThresholdTooLarge = errors.New("shamir: threshold exceeds total shares")

	// ErrInsufficientShares is returned when not enough shares are provided for reconstruction.
	ErrInsufficientShares = errors.New("shamir: insufficient shares for reconstruction")

	// ErrInvalidShareIndex is returned when a requested share index does not exist.
	ErrInvalidShareIndex = errors.New("shamir: invalid share index")

	// ErrIO wraps failures of the underlying reader, writer or entropy source.
	ErrIO = errors.New("shamir: i/o error")

	// ErrIntegrityCheckFailed is returned when the embedded hash does not match the reconstructed data.
	ErrIntegrityCheckFailed = errors.New("shamir: data integrity check failed")

	// ErrInvalidShareFormat is returned when share data is malformed, indices repeat or are zero.
	ErrInvalidShareFormat = errors.New("shamir: invalid share format")

	// ErrInconsistentShareLength is returned when shares disagree on length or flags.
	ErrInconsistentShareLength = errors.New("shamir: inconsistent share lengths")

	// ErrCompression is returned when the secret cannot be compressed.
	ErrCompression = errors.New("shamir: compression failed")

	// ErrDecompression is returned when reconstructed data is not a valid compressed stream.
	ErrDecompression = errors.New("shamir: decompression failed")

	// ErrInvalidConfig is returned for invalid configuration or mismatched stream headers.
	ErrInvalidConfig = errors.New("shamir: invalid configuration")

	// ErrStorage is returned by share stores for persistence failures.
	ErrStorage = errors.New("shamir: storage error")

	// ErrVerificationFailed is returned when shares do not lie on common polynomials.
	ErrVerificationFailed = errors.New("shamir: share verification failed")
)

// InsufficientSharesError reports how many shares were needed and supplied.
// It matches ErrInsufficientShares with errors.Is.
type InsufficientSharesError struct {
	Needed int
	Got    int
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("shamir: need at least %d shares, got %d", e.Needed, e.Got)
}

func (e *InsufficientSharesError) Unwrap() error {
	return ErrInsufficientShares
}

// ThresholdTooLargeError reports a threshold above the total share count.
// It matches ErrThresholdTooLarge with errors.Is.
type ThresholdTooLargeError struct {
	Threshold   int
	TotalShares int
}

func (e *ThresholdTooLargeError) Error() string {
	return fmt.Sprintf("shamir: threshold %d exceeds total shares %d", e.Threshold, e.TotalShares)
}

func (e *ThresholdTooLargeError) Unwrap() error {
	return ErrThresholdTooLarge
}

func insufficient(needed, got int) error {
	return &InsufficientSharesError{Needed: needed, Got: got}
}

func ioError(err error) error {
	return errors.Join(ErrIO, err)
}
