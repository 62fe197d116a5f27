// Package btree is the public facade: Tree ties a storage.Engine to the
// node-level algorithms in pkg/node and owns the one piece of state neither
// package can own on its own, the in-memory root node, plus the growth
// step that promotes a full root to a new internal root.
//
// Grounded in sukryu-golite/pkg/adapters/btree/btree.go's Btree/NewBtree/
// Insert: a thin struct wrapping a storage handle and the current root,
// with root growth handled once at the top of Insert rather than inside
// the recursive insert helper.
package btree

import (
	"github.com/sukryu/godegreetree/pkg/node"
	"github.com/sukryu/godegreetree/pkg/ports"
	"github.com/sukryu/godegreetree/pkg/record"
	"github.com/sukryu/godegreetree/pkg/storage"
	"github.com/sukryu/godegreetree/pkg/utils"
)

// Tree is an ordered, on-disk key/value index. K must supply a strict Less
// relation (ports.Ordered); V travels through the supplied Codec.
type Tree[K ports.Ordered[K], V any] struct {
	cfg    Config
	engine *storage.Engine[K, V]
	store  node.Store[K, V]
	cache  *nodeCache[K, V]
	root   *node.Node[K, V]
	logger utils.Logger
}

// Open opens (creating if necessary) the store named by cfg.StoragePath. An
// empty or nonexistent store is initialised with a fresh empty leaf as its
// root, using cfg.MinimumDegree; an existing store's minimum degree comes
// from its own root record and cfg.MinimumDegree is ignored.
func Open[K ports.Ordered[K], V any](fs ports.FileStore, codec ports.Codec[K, V], cfg Config) (*Tree[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	engine, err := storage.Open(fs, codec, cfg.StoragePath, cfg.ReadOnly, logger)
	if err != nil {
		return nil, err
	}

	t := &Tree[K, V]{
		cfg:    cfg,
		engine: engine,
		cache:  newNodeCache[K, V](cfg.CacheSize),
		logger: logger,
	}
	t.store = &cachingStore[K, V]{inner: engine, cache: t.cache}

	empty, err := engine.IsEmpty()
	if err != nil {
		engine.Close()
		return nil, err
	}

	if empty {
		if cfg.ReadOnly {
			engine.Close()
			return nil, storage.ErrStorageReadOnly
		}
		root := node.New[K, V](cfg.MinimumDegree)
		root.IsRoot = true
		if _, err := engine.SaveRoot(root); err != nil {
			engine.Close()
			return nil, err
		}
		if err := engine.Commit(); err != nil {
			engine.Close()
			return nil, err
		}
		t.cache.put(root)
		t.root = root
		return t, nil
	}

	root, err := engine.ReadRoot()
	if err != nil {
		engine.Close()
		return nil, err
	}
	t.cache.put(root)
	t.root = root
	return t, nil
}

// Find performs an ordered point lookup. The zero value of V and false is
// returned when key is absent.
func (t *Tree[K, V]) Find(key K) (V, bool, error) {
	return t.root.Find(key, t.store)
}

// Insert adds key/value to the tree. Returns an *InsertError wrapping
// node.ErrDuplicateKey when key is already present, and otherwise wraps
// whatever storage or record failure prevented completion.
//
// If the root is full it is split first (growing the tree by one level),
// the element is then placed via ordinary non-full insertion, and finally
// the current root is pinned into the file header with exactly one
// SaveRoot call before the write side is committed. Root growth and
// ordinary inserts both mutate nodes reachable from the in-memory root via
// plain Append calls; without the trailing SaveRoot the header's
// root_offset would point at a stale generation the moment the root's own
// children change.
func (t *Tree[K, V]) Insert(key K, value V) error {
	if t.cfg.ReadOnly {
		return &InsertError{Key: key, Err: storage.ErrStorageReadOnly}
	}

	root := t.root
	if root.IsFull() {
		newRoot := node.New[K, V](root.MinimumDegree)
		newRoot.Children = []node.ChildEdge[K, V]{node.Loaded(root)}
		if err := newRoot.Split(0, t.store); err != nil {
			return &InsertError{Key: key, Err: err}
		}
		newRoot.IsRoot = true
		root.IsRoot = false
		t.root = newRoot
		root = newRoot
		t.logger.Debug("btree: root split, tree grew by one level")
	}

	elem := record.Element[K, V]{Key: key, Value: value}
	if err := root.InsertNonFull(elem, t.store); err != nil {
		return &InsertError{Key: key, Err: err}
	}

	if _, err := t.engine.SaveRoot(root); err != nil {
		return &InsertError{Key: key, Err: err}
	}
	if err := t.engine.Commit(); err != nil {
		return &InsertError{Key: key, Err: err}
	}
	t.cache.reset()
	t.cache.put(root)
	return nil
}

// Stats reports a cheap structural snapshot of the tree, never persisted:
// the root's current element count and degree, and the tree's height
// measured by descending the leftmost spine.
type Stats struct {
	Height        int
	RootElements  int
	MinimumDegree int
}

// Stats walks the leftmost spine from the root to compute height. O(height)
// node loads, not O(size of tree).
func (t *Tree[K, V]) Stats() (Stats, error) {
	height := 1
	n := t.root
	for !n.IsLeaf() {
		child, err := n.Children[0].Load(t.store)
		if err != nil {
			return Stats{}, err
		}
		n = child
		height++
	}
	return Stats{
		Height:        height,
		RootElements:  len(t.root.Elements),
		MinimumDegree: t.root.MinimumDegree,
	}, nil
}

// Close releases the underlying storage engine's file handles.
func (t *Tree[K, V]) Close() error {
	return t.engine.Close()
}
