package matching

import (
	"sync"

	"github.com/quantgrid/tif-matching-engine/types/avl"
)

// Allocator is an object encapsulating all used objects allocation using sync.Pool internally.
// A single allocator can be shared by all order books of one engine.
type Allocator struct {

	// Orders
	orders sync.Pool

	// Pools used by containers
	bookNodes   sync.Pool // used by avl.Tree[bookKey, uint64]
	expiryNodes sync.Pool // used by avl.Tree[expiryKey, uint64]
}

// NewAllocator creates and returns new Allocator instance.
func NewAllocator() *Allocator {
	a := new(Allocator)
	// Orders
	a.orders = sync.Pool{New: func() any {
		return new(Order)
	}}
	// Pools used by containers
	a.bookNodes = sync.Pool{New: func() any {
		return new(avl.Node[bookKey, uint64])
	}}
	a.expiryNodes = sync.Pool{New: func() any {
		return new(avl.Node[expiryKey, uint64])
	}}
	return a
}

// GetOrder allocates Order instance.
func (a *Allocator) GetOrder() *Order {
	return a.orders.Get().(*Order)
}

// PutOrder releases Order instance.
func (a *Allocator) PutOrder(order *Order) {
	// Clean up the instance before releasing
	*order = Order{}
	a.orders.Put(order)
}
