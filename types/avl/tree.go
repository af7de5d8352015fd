package avl

import (
	"sync"

	"gopkg.in/typ.v4"
)

// Tree is an ordered key/value container implemented as an AVL tree
// (a self-balancing binary search tree). Insertion, lookup and removal
// are O(log n). The minimum and maximum nodes are cached so top-of-order
// access is O(1).
// NOTE: Not thread-safe.
type Tree[K, V any] struct {
	compare func(a, b K) int
	pool    *sync.Pool
	root    *Node[K, V]
	min     *Node[K, V]
	max     *Node[K, V]
	size    int
}

// NewOrderedTree creates a new AVL tree using a default comparator function
// for any ordered type (ints, uints, floats, strings).
func NewOrderedTree[K typ.Ordered, V any]() Tree[K, V] {
	return NewTree[K, V](typ.Compare[K])
}

// NewTree creates a new AVL tree using a comparator function that is
// expected to return 0 if a == b, -1 if a < b, and +1 if a > b.
func NewTree[K, V any](compare func(a, b K) int) Tree[K, V] {
	return Tree[K, V]{
		compare: compare,
	}
}

// NewTreePooled creates a new AVL tree which acquires and releases its
// nodes through the given pool instead of allocating them directly.
func NewTreePooled[K, V any](compare func(a, b K) int, pool *sync.Pool) Tree[K, V] {
	return Tree[K, V]{
		compare: compare,
		pool:    pool,
	}
}

// Size returns the amount of nodes in the tree.
func (t *Tree[K, V]) Size() int {
	return t.size
}

// Contains reports whether a node with the given key exists in the tree.
func (t *Tree[K, V]) Contains(key K) bool {
	return t.Find(key) != nil
}

// Find returns the node with the given key, or nil if no such node exists.
func (t *Tree[K, V]) Find(key K) *Node[K, V] {
	if t.root == nil {
		return nil
	}
	return t.root.find(key, t.compare)
}

// Add inserts a node with the given key and value into the tree.
// Duplicate keys are not allowed so an error is returned on duplicate.
func (t *Tree[K, V]) Add(key K, value V) (node *Node[K, V], err error) {
	if t.pool != nil {
		node = t.pool.Get().(*Node[K, V])
		node.key = key
		node.value = value
	} else {
		node = &Node[K, V]{
			key:   key,
			value: value,
		}
	}
	if t.root == nil {
		t.root = node
	} else {
		newRoot, err := t.root.add(node, t.compare)
		if err != nil {
			if t.pool != nil {
				*node = Node[K, V]{}
				t.pool.Put(node)
			}
			return nil, err
		}
		t.root = newRoot
	}
	t.size++
	// Maintain the cached min/max nodes
	if t.min == nil || t.compare(node.key, t.min.key) < 0 {
		t.min = node
	}
	if t.max == nil || t.compare(node.key, t.max.key) > 0 {
		t.max = node
	}
	return
}

// Remove removes the node with the given key from the tree and returns its value.
func (t *Tree[K, V]) Remove(key K) (value V, err error) {
	if t.root == nil {
		err = ErrTreeNodeNotFound
		return
	}
	var node, newRoot *Node[K, V]
	node, newRoot, err = t.root.remove(key, t.compare)
	if err != nil {
		return
	}
	t.root = newRoot
	value = node.value
	if t.pool != nil {
		*node = Node[K, V]{}
		t.pool.Put(node)
	}
	t.size--
	// Maintain the cached min/max nodes
	if t.min == node {
		if t.root != nil {
			t.min = t.root.leftmost()
		} else {
			t.min = nil
		}
	}
	if t.max == node {
		if t.root != nil {
			t.max = t.root.rightmost()
		} else {
			t.max = nil
		}
	}
	return
}

// Min returns the node with the smallest key, or nil if the tree is empty.
func (t *Tree[K, V]) Min() *Node[K, V] {
	return t.min
}

// Max returns the node with the largest key, or nil if the tree is empty.
func (t *Tree[K, V]) Max() *Node[K, V] {
	return t.max
}

// Clear resets this tree to an empty tree, releasing all nodes back to
// the pool when one is used.
func (t *Tree[K, V]) Clear() {
	if t.root != nil {
		t.root.iteratePostOrder(func(node *Node[K, V]) bool {
			if t.pool != nil {
				*node = Node[K, V]{}
				t.pool.Put(node)
			}
			return false
		})
	}
	t.root = nil
	t.min = nil
	t.max = nil
	t.size = 0
}

// IterateInOrder visits every node in ascending key order, calling f with
// each node's key and value. Iteration stops early when f returns true.
// The tree must not be mutated during iteration.
func (t *Tree[K, V]) IterateInOrder(f func(key K, value V) bool) {
	if t.root == nil {
		return
	}
	t.root.iterateInOrder(func(n *Node[K, V]) bool {
		return f(n.key, n.value)
	})
}

// IteratePostOrder visits every node children-first, calling f with each
// node's value. This guarantees leaf nodes are always visited before their
// parents, which is the safe order for bulk teardown.
func (t *Tree[K, V]) IteratePostOrder(f func(value V) bool) {
	if t.root == nil {
		return
	}
	t.root.iteratePostOrder(func(n *Node[K, V]) bool {
		return f(n.value)
	})
}
