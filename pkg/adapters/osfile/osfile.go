// Package osfile implements ports.FileStore over the real filesystem. It is
// the one concrete FileStore this module ships; callers embedding the
// index somewhere unusual (in-memory, over a network block device) supply
// their own, exactly as pkg/adapters/file wraps bare os.File for GoLite's
// StoragePort.
package osfile

import (
	"os"

	"github.com/sukryu/godegreetree/pkg/ports"
)

// Store is a ports.FileStore backed by os.OpenFile / os.Rename / os.Remove.
type Store struct{}

func New() *Store { return &Store{} }

var _ ports.FileStore = (*Store)(nil)

func (s *Store) Open(path string) (ports.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &file{f: f}, nil
}

func (s *Store) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// file implements ports.File over a single *os.File handle.
type file struct {
	f *os.File
}

var _ ports.File = (*file)(nil)

func (fl *file) ReadAt(p []byte, offset int64) (int, error) {
	return fl.f.ReadAt(p, offset)
}

func (fl *file) WriteAt(p []byte, offset int64) (int, error) {
	return fl.f.WriteAt(p, offset)
}

func (fl *file) Append(p []byte) (int64, error) {
	offset, err := fl.f.Seek(0, os.SEEK_END)
	if err != nil {
		return 0, err
	}
	if _, err := fl.f.WriteAt(p, offset); err != nil {
		return 0, err
	}
	return offset, nil
}

func (fl *file) Size() (int64, error) {
	st, err := fl.f.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

func (fl *file) Truncate(size int64) error {
	return fl.f.Truncate(size)
}

func (fl *file) Sync() error {
	return fl.f.Sync()
}

func (fl *file) Close() error {
	return fl.f.Close()
}
