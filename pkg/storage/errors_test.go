package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sukryu/godegreetree/pkg/adapters/osfile"
	"github.com/sukryu/godegreetree/pkg/codec"
	"github.com/sukryu/godegreetree/pkg/node"
	"github.com/sukryu/godegreetree/pkg/storage"
)

func TestIsNotFoundClassifiesOffsetPastEndOfFile(t *testing.T) {
	path := tempPath(t)
	fs := osfile.New()
	e, err := storage.Open[codec.Int64Key, string](fs, codec.Int64StringCodec{}, path, false, nil)
	assert.NoError(t, err)
	defer e.Close()

	root := node.New[codec.Int64Key, string](4)
	_, err = e.SaveRoot(root)
	assert.NoError(t, err)
	assert.NoError(t, e.Commit())

	_, err = e.FindNode(1 << 30)
	assert.Error(t, err)
	assert.True(t, storage.IsNotFound(err), "offset past end of file should classify as not found")
}

func TestIsCorruptionClassifiesMalformedRecord(t *testing.T) {
	path := tempPath(t)
	fs := osfile.New()
	e, err := storage.Open[codec.Int64Key, string](fs, codec.Int64StringCodec{}, path, false, nil)
	assert.NoError(t, err)
	defer e.Close()

	root := node.New[codec.Int64Key, string](4)
	_, err = e.SaveRoot(root)
	assert.NoError(t, err)
	assert.NoError(t, e.Commit())

	// Offset 0 lands on the 20-byte file header, not a framed record: its
	// declared size parses as a valid 19-digit decimal but the body that
	// follows is too short to be a node body.
	_, err = e.FindNode(0)
	assert.Error(t, err)
	assert.True(t, storage.IsCorruption(err), "decoding the header as a record should classify as corruption")
}

func TestIsIOErrorClassifiesStorageError(t *testing.T) {
	se := &storage.StorageError{Op: "open", Path: "/nonexistent", Err: errors.New("boom")}
	assert.True(t, storage.IsIOError(se))
	assert.False(t, storage.IsIOError(errors.New("unrelated")))
}
