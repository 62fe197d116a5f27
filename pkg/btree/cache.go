package btree

import (
	"container/list"
	"sync"

	"github.com/sukryu/godegreetree/pkg/codec"
	"github.com/sukryu/godegreetree/pkg/node"
	"github.com/sukryu/godegreetree/pkg/ports"
)

// nodeCache is a bounded LRU of decoded nodes keyed by their record offset.
// It exists only to avoid re-reading and re-decoding hot nodes (the upper
// levels of the tree are read on every operation); it holds no information
// the storage engine doesn't already have durably, and is dropped wholesale
// on every commit since a commit renumbers nothing but may make previously
// cached offsets belong to a superseded generation's read side.
//
// Grounded in sukryu-golite/pkg/adapters/btree/btree.go's cache/cacheList/
// cacheNode trio: a map for O(1) lookup plus a container/list for O(1)
// move-to-front and evict-from-back.
type nodeCache[K ports.Ordered[K], V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[int64]*list.Element
	order    *list.List
}

type cacheEntry[K ports.Ordered[K], V any] struct {
	offset int64
	node   *node.Node[K, V]
}

func newNodeCache[K ports.Ordered[K], V any](capacity int) *nodeCache[K, V] {
	return &nodeCache[K, V]{
		capacity: capacity,
		entries:  make(map[int64]*list.Element),
		order:    list.New(),
	}
}

func (c *nodeCache[K, V]) get(offset int64) (*node.Node[K, V], bool) {
	if c.capacity <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[offset]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry[K, V]).node, true
}

func (c *nodeCache[K, V]) put(n *node.Node[K, V]) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[n.Offset]; ok {
		elem.Value.(*cacheEntry[K, V]).node = n
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&cacheEntry[K, V]{offset: n.Offset, node: n})
	c.entries[n.Offset] = elem

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry[K, V]).offset)
		}
	}
}

func (c *nodeCache[K, V]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int64]*list.Element)
	c.order.Init()
}

// cachingStore wraps a node.Store so every FindNode is served from the
// cache when possible and every successful Append/FindNode populates it.
type cachingStore[K ports.Ordered[K], V any] struct {
	inner node.Store[K, V]
	cache *nodeCache[K, V]
}

var _ node.Store[codec.Int64Key, string] = (*cachingStore[codec.Int64Key, string])(nil)

func (s *cachingStore[K, V]) Append(n *node.Node[K, V]) (int64, error) {
	offset, err := s.inner.Append(n)
	if err != nil {
		return 0, err
	}
	n.Offset = offset
	s.cache.put(n)
	return offset, nil
}

func (s *cachingStore[K, V]) FindNode(offset int64) (*node.Node[K, V], error) {
	if n, ok := s.cache.get(offset); ok {
		return n, nil
	}
	n, err := s.inner.FindNode(offset)
	if err != nil {
		return nil, err
	}
	s.cache.put(n)
	return n, nil
}
