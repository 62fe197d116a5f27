// Package storage implements the storage engine: the root-pointer file
// header, node record framing (via pkg/record), append, lookup-by-offset,
// and the copy-file commit protocol that turns an append-only log of node
// revisions into a logically mutable store through a deferred root-pointer
// swap.
//
// The header read/write shape is grounded in
// sukryu-golite/pkg/adapters/btree/btree.go's loadHeader/saveHeader
// ("a fixed page holds the root pointer, read it back on open, rewrite it
// after every structural change"). The two-file stage-then-swap commit
// protocol is grounded in the shape of
// sukryu-golite/pkg/adapters/lsmtree/compaction.go's mergeSSTables: build
// a new generation in its own file, then atomically replace the old one.
package storage

import (
	"fmt"

	"github.com/sukryu/godegreetree/pkg/codec"
	"github.com/sukryu/godegreetree/pkg/node"
	"github.com/sukryu/godegreetree/pkg/ports"
	"github.com/sukryu/godegreetree/pkg/record"
	"github.com/sukryu/godegreetree/pkg/utils"
)

// Engine is the storage engine for one tree: a read-side file P and, when
// not read-only, a write-side file P.tmp. Implements node.Store[K,V].
type Engine[K ports.Ordered[K], V any] struct {
	fs       ports.FileStore
	codec    ports.Codec[K, V]
	path     string
	tmpPath  string
	readOnly bool
	logger   utils.Logger

	readFile  ports.File
	writeFile ports.File // nil when readOnly
}

var _ node.Store[codec.Int64Key, string] = (*Engine[codec.Int64Key, string])(nil)

// Open opens the storage engine at path. The write side (path+".tmp") is
// always reset to a fresh, idle header on open when not read-only: any
// bytes left over from a process that crashed mid-operation are never
// consulted for durable state, so they are safely discarded rather than
// resumed.
func Open[K ports.Ordered[K], V any](fs ports.FileStore, codec ports.Codec[K, V], path string, readOnly bool, logger utils.Logger) (*Engine[K, V], error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	e := &Engine[K, V]{
		fs:       fs,
		codec:    codec,
		path:     path,
		tmpPath:  path + ".tmp",
		readOnly: readOnly,
		logger:   logger,
	}

	rf, err := fs.Open(path)
	if err != nil {
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}
	e.readFile = rf

	if !readOnly {
		wf, err := fs.Open(e.tmpPath)
		if err != nil {
			rf.Close()
			return nil, &StorageError{Op: "open", Path: e.tmpPath, Err: err}
		}
		e.writeFile = wf
		if err := e.resetWriteSide(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// IsEmpty reports whether the read-side file has length 0, the definition
// of "no tree yet".
func (e *Engine[K, V]) IsEmpty() (bool, error) {
	size, err := e.readFile.Size()
	if err != nil {
		return false, &StorageError{Op: "stat", Path: e.path, Err: err}
	}
	return size == 0, nil
}

func (e *Engine[K, V]) resetWriteSide() error {
	if err := e.writeFile.Truncate(0); err != nil {
		return &StorageError{Op: "truncate", Path: e.tmpPath, Err: err}
	}
	header, err := record.EncodeHeader(0)
	if err != nil {
		return err
	}
	if _, err := e.writeFile.WriteAt(header, 0); err != nil {
		return &StorageError{Op: "write-header", Path: e.tmpPath, Err: err}
	}
	return nil
}

// Append writes node's current contents to the write side at its current
// end and returns the offset of the written record. The node's .Offset is
// not mutated here; callers (pkg/node) stamp it from the returned value.
func (e *Engine[K, V]) Append(n *node.Node[K, V]) (int64, error) {
	if e.readOnly {
		return 0, ErrStorageReadOnly
	}
	if !n.Loaded {
		return 0, node.ErrNodeNotLoaded
	}
	framed, err := e.frame(n)
	if err != nil {
		return 0, err
	}
	offset, err := e.writeFile.Append(framed)
	if err != nil {
		return 0, &StorageError{Op: "append", Path: e.tmpPath, Err: err}
	}
	e.logger.Debug(fmt.Sprintf("storage: appended node at offset %d (%d bytes)", offset, len(framed)))
	return offset, nil
}

// SaveRoot appends node to the write side, then overwrites the write-side
// header's root_offset with the new offset.
func (e *Engine[K, V]) SaveRoot(n *node.Node[K, V]) (int64, error) {
	offset, err := e.Append(n)
	if err != nil {
		return 0, err
	}
	header, err := record.EncodeHeader(offset)
	if err != nil {
		return 0, err
	}
	if _, err := e.writeFile.WriteAt(header, 0); err != nil {
		return 0, &StorageError{Op: "write-header", Path: e.tmpPath, Err: err}
	}
	e.logger.Debug(fmt.Sprintf("storage: root now at offset %d", offset))
	return offset, nil
}

func (e *Engine[K, V]) frame(n *node.Node[K, V]) ([]byte, error) {
	children := make([]int64, len(n.Children))
	for i, c := range n.Children {
		children[i] = c.Offset()
	}
	body, err := record.EncodeBody(record.Body[K, V]{
		Elements:      n.Elements,
		Children:      children,
		MinimumDegree: n.MinimumDegree,
	}, e.codec)
	if err != nil {
		return nil, err
	}
	return record.FrameRecord(body)
}

// ReadRoot returns the current root node. If a pending write-side exists
// (bytes appended past the idle 20-byte header since the engine was
// opened), it is committed first.
func (e *Engine[K, V]) ReadRoot() (*node.Node[K, V], error) {
	if !e.readOnly {
		size, err := e.writeFile.Size()
		if err != nil {
			return nil, &StorageError{Op: "stat", Path: e.tmpPath, Err: err}
		}
		if size > record.HeaderSize {
			if err := e.Commit(); err != nil {
				return nil, err
			}
		}
	}

	headerBuf := make([]byte, record.HeaderSize)
	if _, err := e.readFile.ReadAt(headerBuf, 0); err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrInvalidRecordSize, err)
	}
	rootOffset, err := record.DecodeHeader(headerBuf)
	if err != nil {
		return nil, err
	}
	n, err := e.findNodeFrom(e.readFile, rootOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrInvalidRootRecord, err)
	}
	n.IsRoot = true
	return n, nil
}

// FindNode decodes the node record at offset. It is tried first on the
// read side; if that fails and a write side is open, the same offset is
// retried there, covering the case where the caller is holding an offset
// that was appended during the current operation (so it exists only in
// the not-yet-committed write-side file).
func (e *Engine[K, V]) FindNode(offset int64) (*node.Node[K, V], error) {
	n, err := e.findNodeFrom(e.readFile, offset)
	if err == nil {
		return n, nil
	}
	if e.writeFile != nil {
		if n2, err2 := e.findNodeFrom(e.writeFile, offset); err2 == nil {
			return n2, nil
		}
	}
	return nil, err
}

func (e *Engine[K, V]) findNodeFrom(f ports.File, offset int64) (*node.Node[K, V], error) {
	sizeBuf := make([]byte, record.OffsetWidth)
	if _, err := f.ReadAt(sizeBuf, offset); err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrInvalidRecordSize, err)
	}
	size, err := record.ParseRecordSize(string(sizeBuf))
	if err != nil {
		return nil, err
	}
	body := make([]byte, size)
	if _, err := f.ReadAt(body, offset+record.OffsetWidth); err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrInvalidRecord, err)
	}
	decoded, err := record.DecodeBody(body, e.codec)
	if err != nil {
		return nil, err
	}
	n := &node.Node[K, V]{
		MinimumDegree: decoded.MinimumDegree,
		Elements:      decoded.Elements,
		Loaded:        true,
		Offset:        offset,
	}
	n.Children = make([]node.ChildEdge[K, V], len(decoded.Children))
	for i, off := range decoded.Children {
		n.Children[i] = node.Unloaded[K, V](off)
	}
	return n, nil
}

// Commit replaces the read-side file with the write-side file (an atomic
// rename from the reader's standpoint on POSIX filesystems), reopens the
// read side, and reinitialises a fresh, idle write side.
func (e *Engine[K, V]) Commit() error {
	if e.readOnly {
		return ErrStorageReadOnly
	}
	if err := e.writeFile.Sync(); err != nil {
		return &StorageError{Op: "sync", Path: e.tmpPath, Err: err}
	}
	if err := e.readFile.Close(); err != nil {
		return &StorageError{Op: "close", Path: e.path, Err: err}
	}
	if err := e.writeFile.Close(); err != nil {
		return &StorageError{Op: "close", Path: e.tmpPath, Err: err}
	}
	if err := e.fs.Remove(e.path); err != nil {
		return &StorageError{Op: "remove", Path: e.path, Err: err}
	}
	if err := e.fs.Rename(e.tmpPath, e.path); err != nil {
		return &StorageError{Op: "rename", Path: e.tmpPath, Err: err}
	}

	rf, err := e.fs.Open(e.path)
	if err != nil {
		return &StorageError{Op: "reopen", Path: e.path, Err: err}
	}
	e.readFile = rf
	if err := e.readFile.Sync(); err != nil {
		return &StorageError{Op: "sync", Path: e.path, Err: err}
	}

	wf, err := e.fs.Open(e.tmpPath)
	if err != nil {
		return &StorageError{Op: "reopen", Path: e.tmpPath, Err: err}
	}
	e.writeFile = wf
	if err := e.resetWriteSide(); err != nil {
		return err
	}
	e.logger.Debug("storage: commit complete")
	return nil
}

// Close releases the read-side file handle and, on teardown, removes any
// lingering write-side file.
func (e *Engine[K, V]) Close() error {
	var firstErr error
	if e.readFile != nil {
		if err := e.readFile.Close(); err != nil {
			firstErr = &StorageError{Op: "close", Path: e.path, Err: err}
		}
	}
	if e.writeFile != nil {
		if err := e.writeFile.Close(); err != nil && firstErr == nil {
			firstErr = &StorageError{Op: "close", Path: e.tmpPath, Err: err}
		}
		if err := e.fs.Remove(e.tmpPath); err != nil && firstErr == nil {
			firstErr = &StorageError{Op: "remove", Path: e.tmpPath, Err: err}
		}
	}
	return firstErr
}
