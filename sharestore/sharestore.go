// Package sharestore persists shamir shares, one file per share index.
package sharestore

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/vitalvas/sharekit/securemem"
	"github.com/vitalvas/sharekit/shamir"
)

const (
	filePrefix = "share_"
	filePerm   = 0o600
	dirPerm    = 0o700
)

// Store keeps shares addressed by index.
type Store interface {
	StoreShare(share shamir.Share) error
	LoadShare(index uint8) (shamir.Share, error)
	ListShares() ([]uint8, error)
	DeleteShare(index uint8) error
}

// FileStore writes each share as share_NNN in its binary form.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore returns a store rooted at dir on fs. Use afero.NewOsFs() for
// the real filesystem.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{
		fs:  fs,
		dir: dir,
	}
}

func fileName(index uint8) string {
	return fmt.Sprintf("%s%03d", filePrefix, index)
}

func (s *FileStore) path(index uint8) string {
	return filepath.Join(s.dir, fileName(index))
}

// StoreShare writes share, replacing any share with the same index.
func (s *FileStore) StoreShare(share shamir.Share) error {
	data, err := share.MarshalBinary()
	if err != nil {
		return err
	}
	defer securemem.Zero(data)

	if err := s.fs.MkdirAll(s.dir, dirPerm); err != nil {
		return storageError("create directory "+s.dir, err)
	}

	filename := s.path(share.Index)
	if err := afero.WriteFile(s.fs, filename, data, filePerm); err != nil {
		return storageError("write "+filename, err)
	}

	return nil
}

// LoadShare reads the share with the given index. A missing share yields
// shamir.ErrInvalidShareIndex; a file holding another index yields
// shamir.ErrInvalidShareFormat.
func (s *FileStore) LoadShare(index uint8) (shamir.Share, error) {
	filename := s.path(index)

	data, err := afero.ReadFile(s.fs, filename)
	if errors.Is(err, fs.ErrNotExist) {
		return shamir.Share{}, fmt.Errorf("%w: share %d not found", shamir.ErrInvalidShareIndex, index)
	}
	if err != nil {
		return shamir.Share{}, storageError("read "+filename, err)
	}
	defer securemem.Zero(data)

	share, err := shamir.ParseShare(data)
	if err != nil {
		return shamir.Share{}, fmt.Errorf("%s: %w", filename, err)
	}

	if share.Index != index {
		share.Zeroize()
		return shamir.Share{}, fmt.Errorf("%w: %s holds share %d", shamir.ErrInvalidShareFormat, filename, share.Index)
	}

	return share, nil
}

// ListShares returns the stored indices in ascending order. A missing
// directory holds no shares.
func (s *FileStore) ListShares() ([]uint8, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("list "+s.dir, err)
	}

	var indices []uint8
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name, ok := strings.CutPrefix(entry.Name(), filePrefix)
		if !ok || len(name) != 3 {
			continue
		}

		n, err := strconv.ParseUint(name, 10, 8)
		if err != nil || n == 0 {
			continue
		}

		indices = append(indices, uint8(n))
	}

	slices.Sort(indices)

	return indices, nil
}

// DeleteShare removes the share with the given index.
func (s *FileStore) DeleteShare(index uint8) error {
	filename := s.path(index)

	err := s.fs.Remove(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: share %d not found", shamir.ErrInvalidShareIndex, index)
	}
	if err != nil {
		return storageError("delete "+filename, err)
	}

	return nil
}

// StoreShares writes every share.
func StoreShares(store Store, shares []shamir.Share) error {
	for _, share := range shares {
		if err := store.StoreShare(share); err != nil {
			return err
		}
	}
	return nil
}

// LoadShares reads every share listed by the store.
func LoadShares(store Store) ([]shamir.Share, error) {
	indices, err := store.ListShares()
	if err != nil {
		return nil, err
	}

	shares := make([]shamir.Share, 0, len(indices))
	for _, index := range indices {
		share, err := store.LoadShare(index)
		if err != nil {
			shamir.ZeroizeShares(shares)
			return nil, err
		}
		shares = append(shares, share)
	}

	return shares, nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", shamir.ErrStorage, op, err)
}
