package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/sukryu/godegreetree/pkg/record"
)

// ErrStorageReadOnly is returned by any mutating engine call when the
// engine was opened read-only: a read-only engine never opens P.tmp and
// disallows any mutation.
var ErrStorageReadOnly = errors.New("storage: engine is read-only")

// StorageError wraps a filesystem-level failure with the operation and
// path involved, grounded in lsmtree.ErrWALError's {Operation, Message,
// Err} shape with an Unwrap so errors.Is still matches the underlying
// cause.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsNotFound reports whether err indicates a record could not be located
// at the offset asked for (the read ran off the end of the file rather
// than finding malformed bytes), grounded in
// lsmtree.IsNotFound/ErrKeyNotFound's role as a classification helper over
// a sentinel, here over io.EOF/io.ErrUnexpectedEOF instead.
func IsNotFound(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// IsCorruption reports whether err carries one of the pkg/record format
// sentinels: a malformed size field, a truncated or mismatched body, or an
// unreadable root record. A read that ran off the end of the file is
// wrapped with ErrInvalidRecordSize or ErrInvalidRecord as well, so it
// matches both IsCorruption and IsNotFound.
func IsCorruption(err error) bool {
	return errors.Is(err, record.ErrInvalidRecordSize) ||
		errors.Is(err, record.ErrInvalidRecord) ||
		errors.Is(err, record.ErrInvalidRootRecord) ||
		errors.Is(err, record.ErrChildOffsetInvalid) ||
		errors.Is(err, record.ErrOffsetOutOfRange) ||
		errors.Is(err, record.ErrRecordTooLarge)
}

// IsIOError reports whether err is a filesystem-level failure (open,
// rename, sync, ...) rather than a record-format problem.
func IsIOError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
