// Package node implements the in-memory and on-disk unit of the B-tree:
// Node, the offset-addressed ChildEdge tagged variant, and the three
// tree-level operations: Find, InsertNonFull, Split.
//
// Grounded in sukryu-golite/pkg/adapters/btree/btree.go's Insert/
// insertNonFull/splitChild/searchValue: median promotion at index t-1,
// children split [0,t) / [t,2t), the descend-index bump after a split, and
// a linear scan for the smallest index whose key is not less than the
// search key. Delete-only machinery (deleteFromNode, mergeNodes, fill,
// borrowFromPrev/Next, getPredecessor/Successor) is not ported: this index
// is insert/find only, deletion is out of scope.
package node

import (
	"errors"
	"fmt"

	"github.com/sukryu/godegreetree/pkg/ports"
	"github.com/sukryu/godegreetree/pkg/record"
)

var (
	// ErrNodeNotLoaded indicates an API was invoked on a node whose
	// elements/children are not in memory. Programming error, fatal to
	// the operation.
	ErrNodeNotLoaded = errors.New("node: not loaded")
	// ErrDuplicateKey is returned when an insert would create a second
	// element with an equal key.
	ErrDuplicateKey = errors.New("node: duplicate key")
)

// Store is what a Node needs from the storage engine to load children and
// persist itself: append a node's current contents as a fresh record, and
// fetch a node by its record offset. Satisfied by *storage.Engine[K,V].
type Store[K ports.Ordered[K], V any] interface {
	Append(n *Node[K, V]) (int64, error)
	FindNode(offset int64) (*Node[K, V], error)
}

// ChildEdge is a reference to a child node: either Unloaded, carrying only
// the child's offset, or Loaded, carrying the decoded Node. This replaces
// a boolean "loaded" flag on the edge itself, so an attempt to use an
// edge's node without loading it is a compile-time impossibility rather
// than a runtime check.
type ChildEdge[K ports.Ordered[K], V any] struct {
	offset int64
	node   *Node[K, V]
}

// Unloaded builds a ChildEdge that only knows its offset.
func Unloaded[K ports.Ordered[K], V any](offset int64) ChildEdge[K, V] {
	return ChildEdge[K, V]{offset: offset}
}

// Loaded builds a ChildEdge that already carries its decoded Node.
func Loaded[K ports.Ordered[K], V any](n *Node[K, V]) ChildEdge[K, V] {
	return ChildEdge[K, V]{offset: n.Offset, node: n}
}

// Offset returns the child's current record offset. A loaded edge always
// defers to its Node's own Offset field rather than the offset captured
// when the edge was built: the child may have been mutated and persisted
// again since (e.g. by a later insert descending through it), stamping a
// new offset onto the Node without this edge ever being rebuilt.
func (e ChildEdge[K, V]) Offset() int64 {
	if e.node != nil {
		return e.node.Offset
	}
	return e.offset
}

// IsLoaded reports whether the child Node is already resident in memory.
func (e ChildEdge[K, V]) IsLoaded() bool { return e.node != nil }

// Load returns the child Node, fetching it from the store on first use.
func (e *ChildEdge[K, V]) Load(store Store[K, V]) (*Node[K, V], error) {
	if e.node != nil {
		return e.node, nil
	}
	n, err := store.FindNode(e.offset)
	if err != nil {
		return nil, err
	}
	e.node = n
	e.offset = n.Offset
	return n, nil
}

// Node is one B-tree node, in memory or freshly decoded from disk.
type Node[K ports.Ordered[K], V any] struct {
	MinimumDegree int
	Elements      []record.Element[K, V]
	Children      []ChildEdge[K, V]
	Offset        int64
	Loaded        bool
	IsRoot        bool
}

// New constructs a freshly-loaded, empty leaf node (used for a new root or
// the new right sibling of a split).
func New[K ports.Ordered[K], V any](minimumDegree int) *Node[K, V] {
	return &Node[K, V]{MinimumDegree: minimumDegree, Loaded: true}
}

// IsLeaf is a node with no children; derived, never stored as ground truth.
func (n *Node[K, V]) IsLeaf() bool { return len(n.Children) == 0 }

// IsFull is a node with exactly 2t-1 elements.
func (n *Node[K, V]) IsFull() bool { return len(n.Elements) == 2*n.MinimumDegree-1 }

func equal[K ports.Ordered[K]](a, b K) bool {
	return !a.Less(b) && !b.Less(a)
}

// locate returns the smallest index i such that n.Elements[i].Key is not
// less than key (i.e. >= key), and whether that element's key equals key
// exactly. O(n.Elements) linear scan; binary search is an acceptable
// drop-in but not required by the public contract.
func (n *Node[K, V]) locate(key K) (int, bool) {
	i := 0
	for i < len(n.Elements) && n.Elements[i].Key.Less(key) {
		i++
	}
	return i, i < len(n.Elements) && equal(n.Elements[i].Key, key)
}

// Find performs the ordered point lookup: linear scan for the smallest
// index whose key is >= the search key, an exact match there is a hit, a
// leaf with no match is a miss, otherwise recurse into the matching child.
func (n *Node[K, V]) Find(key K, store Store[K, V]) (V, bool, error) {
	var zero V
	if !n.Loaded {
		return zero, false, ErrNodeNotLoaded
	}
	i, hit := n.locate(key)
	if hit {
		return n.Elements[i].Value, true, nil
	}
	if n.IsLeaf() {
		return zero, false, nil
	}
	child, err := n.Children[i].Load(store)
	if err != nil {
		return zero, false, err
	}
	return child.Find(key, store)
}

// persist appends n's current contents as a fresh record and stamps the
// returned offset back onto n.
func (n *Node[K, V]) persist(store Store[K, V]) error {
	off, err := store.Append(n)
	if err != nil {
		return err
	}
	n.Offset = off
	return nil
}

// InsertNonFull inserts elem into the subtree rooted at n. Precondition: n
// is loaded and not full — callers (Tree.Insert, and this method's own
// recursive descent) must have already split any full child before
// calling down into it, so this never recurses into a full node.
func (n *Node[K, V]) InsertNonFull(elem record.Element[K, V], store Store[K, V]) error {
	if !n.Loaded {
		return ErrNodeNotLoaded
	}
	i, hit := n.locate(elem.Key)
	if hit {
		return ErrDuplicateKey
	}

	if n.IsLeaf() {
		n.Elements = append(n.Elements, record.Element[K, V]{})
		copy(n.Elements[i+1:], n.Elements[i:])
		n.Elements[i] = elem
		return n.persist(store)
	}

	child, err := n.Children[i].Load(store)
	if err != nil {
		return err
	}
	if child.IsFull() {
		if err := n.Split(i, store); err != nil {
			return err
		}
		// The median promoted into n.Elements[i] may now be the exact
		// duplicate we're trying to insert, or may sit strictly below
		// elem.Key, in which case we descend into the new right sibling.
		if equal(n.Elements[i].Key, elem.Key) {
			return ErrDuplicateKey
		}
		if n.Elements[i].Key.Less(elem.Key) {
			i++
		}
		child, err = n.Children[i].Load(store)
		if err != nil {
			return err
		}
	}
	if err := child.InsertNonFull(elem, store); err != nil {
		return err
	}
	return n.persist(store)
}

// Split splits the full child at index i: the child's elements partition
// into [0,t-1) kept, [t-1] promoted into n, [t,2t-1) moved to a new right
// sibling; children (if any) partition [0,t) kept, [t,2t) moved. The
// mutated left child, the new right sibling, and n itself are each
// persisted with fresh offsets.
func (n *Node[K, V]) Split(i int, store Store[K, V]) error {
	if !n.Loaded {
		return ErrNodeNotLoaded
	}
	left, err := n.Children[i].Load(store)
	if err != nil {
		return err
	}
	t := left.MinimumDegree
	if len(left.Elements) != 2*t-1 {
		return fmt.Errorf("node: split precondition violated: child has %d elements, want %d", len(left.Elements), 2*t-1)
	}

	median := left.Elements[t-1]
	right := New[K, V](t)
	right.Elements = append([]record.Element[K, V](nil), left.Elements[t:]...)
	if !left.IsLeaf() {
		right.Children = append([]ChildEdge[K, V](nil), left.Children[t:]...)
		left.Children = append([]ChildEdge[K, V](nil), left.Children[:t]...)
	}
	left.Elements = append([]record.Element[K, V](nil), left.Elements[:t-1]...)

	if err := left.persist(store); err != nil {
		return err
	}
	if err := right.persist(store); err != nil {
		return err
	}

	n.Elements = append(n.Elements, record.Element[K, V]{})
	copy(n.Elements[i+1:], n.Elements[i:])
	n.Elements[i] = median

	n.Children = append(n.Children, ChildEdge[K, V]{})
	copy(n.Children[i+2:], n.Children[i+1:])
	n.Children[i] = Loaded(left)
	n.Children[i+1] = Loaded(right)

	return n.persist(store)
}
