package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sukryu/godegreetree/pkg/codec"
	"github.com/sukryu/godegreetree/pkg/record"
)

// memStore is a minimal in-process Store, standing in for the storage
// engine so node-level logic can be tested without touching a filesystem.
type memStore struct {
	nodes  map[int64]*Node[codec.Int64Key, string]
	offset int64
}

func newMemStore() *memStore {
	return &memStore{nodes: make(map[int64]*Node[codec.Int64Key, string])}
}

func (s *memStore) Append(n *Node[codec.Int64Key, string]) (int64, error) {
	s.offset++
	off := s.offset
	clone := *n
	clone.Offset = off
	s.nodes[off] = &clone
	return off, nil
}

func (s *memStore) FindNode(offset int64) (*Node[codec.Int64Key, string], error) {
	n, ok := s.nodes[offset]
	if !ok {
		return nil, record.ErrInvalidRecord
	}
	return n, nil
}

func TestInsertNonFullKeepsSortedOrder(t *testing.T) {
	store := newMemStore()
	n := New[codec.Int64Key, string](4)

	for _, k := range []int64{5, 1, 3, 2, 4} {
		err := n.InsertNonFull(record.Element[codec.Int64Key, string]{Key: codec.Int64Key(k), Value: "v"}, store)
		assert.NoError(t, err)
	}

	for i := 1; i < len(n.Elements); i++ {
		assert.True(t, n.Elements[i-1].Key.Less(n.Elements[i].Key), "elements must stay sorted")
	}
}

func TestInsertNonFullRejectsDuplicate(t *testing.T) {
	store := newMemStore()
	n := New[codec.Int64Key, string](4)
	assert.NoError(t, n.InsertNonFull(record.Element[codec.Int64Key, string]{Key: 1, Value: "a"}, store))
	err := n.InsertNonFull(record.Element[codec.Int64Key, string]{Key: 1, Value: "b"}, store)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestFindHitAndMiss(t *testing.T) {
	store := newMemStore()
	n := New[codec.Int64Key, string](4)
	assert.NoError(t, n.InsertNonFull(record.Element[codec.Int64Key, string]{Key: 7, Value: "seven"}, store))

	value, ok, err := n.Find(7, store)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "seven", value)

	_, ok, err = n.Find(99, store)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSplitPromotesMedian(t *testing.T) {
	store := newMemStore()
	child := New[codec.Int64Key, string](2) // t=2, full at 3 elements
	for _, k := range []int64{1, 2, 3} {
		child.Elements = append(child.Elements, record.Element[codec.Int64Key, string]{Key: codec.Int64Key(k), Value: "v"})
	}
	offset, err := store.Append(child)
	assert.NoError(t, err)
	child.Offset = offset

	parent := New[codec.Int64Key, string](2)
	parent.Children = []ChildEdge[codec.Int64Key, string]{Loaded(child)}

	assert.NoError(t, parent.Split(0, store))
	assert.Len(t, parent.Elements, 1)
	assert.Equal(t, codec.Int64Key(2), parent.Elements[0].Key)
	assert.Len(t, parent.Children, 2)

	left, err := parent.Children[0].Load(store)
	assert.NoError(t, err)
	assert.Equal(t, []record.Element[codec.Int64Key, string]{{Key: 1, Value: "v"}}, left.Elements)

	right, err := parent.Children[1].Load(store)
	assert.NoError(t, err)
	assert.Equal(t, []record.Element[codec.Int64Key, string]{{Key: 3, Value: "v"}}, right.Elements)
}

func TestChildEdgeLoadCachesResult(t *testing.T) {
	store := newMemStore()
	n := New[codec.Int64Key, string](2)
	offset, err := store.Append(n)
	assert.NoError(t, err)

	edge := Unloaded[codec.Int64Key, string](offset)
	assert.False(t, edge.IsLoaded())

	_, err = edge.Load(store)
	assert.NoError(t, err)
	assert.True(t, edge.IsLoaded())
}
