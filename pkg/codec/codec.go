// Package codec supplies a couple of concrete ports.Codec implementations
// for common key/value shapes, grounded in the GoLite B-tree's own
// Item{Key string, Value string} pair. Callers with richer value types
// write their own Codec; the tree itself never assumes one of these.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/sukryu/godegreetree/pkg/ports"
)

// Int64Key orders by the built-in int64 comparison. It satisfies
// ports.Ordered[Int64Key].
type Int64Key int64

func (k Int64Key) Less(other Int64Key) bool { return k < other }

// StringKey orders lexicographically by byte value. It satisfies
// ports.Ordered[StringKey].
type StringKey string

func (k StringKey) Less(other StringKey) bool { return k < other }

// Int64StringCodec encodes Int64Key keys and string values.
type Int64StringCodec struct{}

var _ ports.Codec[Int64Key, string] = Int64StringCodec{}

func (Int64StringCodec) EncodeKey(key Int64Key) ([]byte, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(key))
	return buf, nil
}

func (Int64StringCodec) DecodeKey(data []byte) (Int64Key, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("codec: int64 key must be 8 bytes, got %d", len(data))
	}
	return Int64Key(binary.LittleEndian.Uint64(data)), nil
}

func (Int64StringCodec) EncodeValue(value string) ([]byte, error) {
	return []byte(value), nil
}

func (Int64StringCodec) DecodeValue(data []byte) (string, error) {
	return string(data), nil
}

// StringStringCodec encodes StringKey keys and string values verbatim.
type StringStringCodec struct{}

var _ ports.Codec[StringKey, string] = StringStringCodec{}

func (StringStringCodec) EncodeKey(key StringKey) ([]byte, error) {
	return []byte(key), nil
}

func (StringStringCodec) DecodeKey(data []byte) (StringKey, error) {
	return StringKey(data), nil
}

func (StringStringCodec) EncodeValue(value string) ([]byte, error) {
	return []byte(value), nil
}

func (StringStringCodec) DecodeValue(data []byte) (string, error) {
	return string(data), nil
}
