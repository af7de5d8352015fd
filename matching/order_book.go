package matching

import (
	"fmt"
	"sync"
	"time"

	"github.com/tidwall/hashmap"

	"github.com/quantgrid/tif-matching-engine/types/avl"
)

// OrderBook stores resting buy and sell orders of one instrument in
// price-time priority and matches crossed orders through the fixed chain
// of time-in-force strategies.
//
// Three indices are kept mutually consistent: the two side indices
// (bids/asks ordered by price-time priority), the expiry index (ordered
// by ascending expiry) and the id index owning the order state. Every
// live order is present in exactly one side index, the expiry index and
// the id index, or in none of them.
// NOTE: Not thread-safe.
type OrderBook struct {
	// Allocator used by the order book
	allocator *Allocator

	// Order book symbol
	symbol string

	// Bid/Ask price-time priority indices holding order ids
	bids avl.Tree[bookKey, uint64]
	asks avl.Tree[bookKey, uint64]

	// Expiry index holding order ids ordered by ascending expiry
	expiries avl.Tree[expiryKey, uint64]

	// Orders storage is internal for each order book
	orders *hashmap.Map[uint64, *Order]

	// Trade log, append-only in execution order
	trades []Trade

	// TIF strategies invoked in fixed precedence order (FOK, IOC, GTC)
	strategies []strategy

	handler Handler
	clock   Clock

	// Tasks to run in the single for the order book goroutine
	// Used externally, stored in order book to avoid storing in separate container in matching engine
	chanTasks chan func(*OrderBook) error

	// Synchronization stuff
	chanForcedStop chan struct{} // for forced stop
	wg             sync.WaitGroup
}

// NewOrderBook creates and returns new OrderBook instance.
func NewOrderBook(allocator *Allocator, symbol string, handler Handler, clock Clock, taskQueueSize int) *OrderBook {
	return &OrderBook{
		allocator: allocator,
		symbol:    symbol,
		bids:      avl.NewTreePooled[bookKey, uint64](compareBidKeys, &allocator.bookNodes),
		asks:      avl.NewTreePooled[bookKey, uint64](compareAskKeys, &allocator.bookNodes),
		expiries:  avl.NewTreePooled[expiryKey, uint64](compareExpiryKeys, &allocator.expiryNodes),
		orders:    hashmap.New[uint64, *Order](defaultReservedOrderSlots),
		strategies: []strategy{
			fokStrategy{},
			iocStrategy{},
			gtcStrategy{},
		},
		handler:        handler,
		clock:          clock,
		chanTasks:      make(chan func(*OrderBook) error, taskQueueSize),
		chanForcedStop: make(chan struct{}),
	}
}

// Clean releases all internally used tree nodes and order instances and
// cleans whole order book state. Logged trades are kept.
func (ob *OrderBook) Clean() {
	for _, order := range ob.orders.Values() {
		ob.allocator.PutOrder(order)
	}
	ob.bids.Clear()
	ob.asks.Clear()
	ob.expiries.Clear()
	ob.orders = hashmap.New[uint64, *Order](defaultReservedOrderSlots)
}

////////////////////////////////////////////////////////////////
// Order book getters
////////////////////////////////////////////////////////////////

// Symbol returns order book symbol.
func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

// IsEmpty returns true if the order book has no orders.
func (ob *OrderBook) IsEmpty() bool {
	return ob.Size() == 0
}

// Size returns total amount of orders in the order book.
func (ob *OrderBook) Size() int {
	return ob.orders.Len()
}

// Order returns order with given id or nil when no such order is live.
func (ob *OrderBook) Order(id uint64) *Order {
	if order, ok := ob.orders.Get(id); ok {
		return order
	}
	return nil
}

// TopBid returns the best (highest price, earliest arrival) buy order.
func (ob *OrderBook) TopBid() *Order {
	if node := ob.bids.Min(); node != nil {
		return ob.Order(node.Value())
	}
	return nil
}

// TopAsk returns the best (lowest price, earliest arrival) sell order.
func (ob *OrderBook) TopAsk() *Order {
	if node := ob.asks.Min(); node != nil {
		return ob.Order(node.Value())
	}
	return nil
}

// IterateBids visits every resting buy order in priority order.
// Iteration stops early when f returns true. The book must not be
// mutated during iteration.
func (ob *OrderBook) IterateBids(f func(order *Order) bool) {
	ob.bids.IterateInOrder(func(_ bookKey, id uint64) bool {
		return f(ob.Order(id))
	})
}

// IterateAsks visits every resting sell order in priority order.
func (ob *OrderBook) IterateAsks(f func(order *Order) bool) {
	ob.asks.IterateInOrder(func(_ bookKey, id uint64) bool {
		return f(ob.Order(id))
	})
}

// TradeHistory returns all trades logged by this book in execution
// order. The returned slice is a copy and is safe to retain.
func (ob *OrderBook) TradeHistory() []Trade {
	trades := make([]Trade, len(ob.trades))
	copy(trades, ob.trades)
	return trades
}

// Trades returns the amount of trades logged by this book.
func (ob *OrderBook) Trades() int {
	return len(ob.trades)
}

////////////////////////////////////////////////////////////////
// Orders management
////////////////////////////////////////////////////////////////

// AddOrder inserts the given order into the side index matching its
// side, the expiry index and the id index.
func (ob *OrderBook) AddOrder(order Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	if _, ok := ob.orders.Get(order.id); ok {
		return ErrOrderDuplicate
	}

	// Take ownership of the order state
	owned := ob.allocator.GetOrder()
	*owned = order

	if err := ob.link(owned); err != nil {
		ob.allocator.PutOrder(owned)
		return err
	}

	// Call the corresponding handler
	ob.handler.OnAddOrder(ob, owned)

	return nil
}

// CancelOrder removes the order with the given id from all indices.
// Cancelling an unknown id reports ErrOrderNotFound and leaves the book
// unchanged.
func (ob *OrderBook) CancelOrder(id uint64) error {
	order := ob.Order(id)
	if order == nil {
		return ErrOrderNotFound
	}

	if err := ob.unlink(order); err != nil {
		return err
	}

	// Call the corresponding handler
	ob.handler.OnDeleteOrder(ob, order)

	ob.allocator.PutOrder(order)

	return nil
}

// UpdateOrder replaces price and quantity of a live order. The replacement
// keeps the order id, side, symbol and expiry but receives a fresh arrival
// time, so the order forfeits its former time priority and queues behind
// existing orders at the same price.
func (ob *OrderBook) UpdateOrder(id uint64, newPrice Uint, newQuantity Uint) error {
	order := ob.Order(id)
	if order == nil {
		return ErrOrderNotFound
	}
	if newPrice.IsZero() {
		return ErrInvalidOrderPrice
	}
	if newQuantity.IsZero() {
		return ErrInvalidOrderQuantity
	}

	if err := ob.unlinkFromIndices(order); err != nil {
		return err
	}

	order.price = newPrice
	order.quantity = newQuantity
	order.restQuantity = newQuantity
	order.arrival = ob.clock.Now()

	if err := ob.linkIntoIndices(order); err != nil {
		return err
	}

	// Call the corresponding handler
	ob.handler.OnUpdateOrder(ob, order)

	return nil
}

////////////////////////////////////////////////////////////////
// Matching
////////////////////////////////////////////////////////////////

// MatchOrders matches crossed orders in the order book. While the best
// bid price is greater than or equal to the best ask price exactly one
// applicable strategy performs one matching round, then the crossing
// condition is re-evaluated from scratch. After the loop the top (best)
// bid price is guaranteed to be less than the top (best) ask price or
// one of the sides is empty.
func (ob *OrderBook) MatchOrders() error {
	for {
		topBid, topAsk := ob.TopBid(), ob.TopAsk()

		// Continue only if there are crossed orders
		if topBid == nil || topAsk == nil || topBid.price.LessThan(topAsk.price) {
			return nil
		}

		// Select exactly one strategy in fixed precedence order
		for _, s := range ob.strategies {
			if !s.CanHandle(topBid, topAsk) {
				continue
			}
			if err := s.Match(ob); err != nil {
				return fmt.Errorf("failed to match %s: %w", ob.symbol, err)
			}
			break
		}
	}
}

////////////////////////////////////////////////////////////////
// Expiration
////////////////////////////////////////////////////////////////

// PurgeExpiredOrders removes all orders whose expiry is before the given
// time. The expiry index is sorted ascending, so scanning stops as soon
// as its head is not expired: no further entries can be expired.
func (ob *OrderBook) PurgeExpiredOrders(now time.Time) error {
	for {
		node := ob.expiries.Min()
		if node == nil {
			return nil
		}
		order := ob.Order(node.Value())
		if !order.IsExpired(now) {
			return nil
		}

		if err := ob.unlink(order); err != nil {
			return err
		}

		// Call the corresponding handler
		ob.handler.OnExpireOrder(ob, order)

		ob.allocator.PutOrder(order)
	}
}

////////////////////////////////////////////////////////////////
// Internal helpers
////////////////////////////////////////////////////////////////

// sideTree returns the side index matching the order side.
func (ob *OrderBook) sideTree(order *Order) (*avl.Tree[bookKey, uint64], error) {
	switch order.side {
	case OrderSideBuy:
		return &ob.bids, nil
	case OrderSideSell:
		return &ob.asks, nil
	default:
		// Unreachable given the closed enum, kept defensive
		return nil, ErrInvalidOrderSide
	}
}

// link inserts the order into all three indices.
func (ob *OrderBook) link(order *Order) error {
	if err := ob.linkIntoIndices(order); err != nil {
		return err
	}
	ob.orders.Set(order.id, order)
	return nil
}

// unlink removes the order from all three indices.
func (ob *OrderBook) unlink(order *Order) error {
	if err := ob.unlinkFromIndices(order); err != nil {
		return err
	}
	ob.orders.Delete(order.id)
	return nil
}

// linkIntoIndices inserts the order into its side index and the expiry
// index, leaving the id index untouched.
func (ob *OrderBook) linkIntoIndices(order *Order) error {
	tree, err := ob.sideTree(order)
	if err != nil {
		return err
	}
	if _, err := tree.Add(newBookKey(order), order.id); err != nil {
		return fmt.Errorf("failed to index order %d by priority: %w", order.id, err)
	}
	if _, err := ob.expiries.Add(newExpiryKey(order), order.id); err != nil {
		// Keep all indices consistent on failure
		_, _ = tree.Remove(newBookKey(order))
		return fmt.Errorf("failed to index order %d by expiry: %w", order.id, err)
	}
	return nil
}

// unlinkFromIndices removes the order from its side index and the expiry
// index, leaving the id index untouched.
func (ob *OrderBook) unlinkFromIndices(order *Order) error {
	tree, err := ob.sideTree(order)
	if err != nil {
		return err
	}
	if _, err := tree.Remove(newBookKey(order)); err != nil {
		return fmt.Errorf("failed to unindex order %d by priority: %w", order.id, err)
	}
	if _, err := ob.expiries.Remove(newExpiryKey(order)); err != nil {
		return fmt.Errorf("failed to unindex order %d by expiry: %w", order.id, err)
	}
	return nil
}

// executeTrade reduces both orders by the given quantity and appends one
// trade at the given price to the trade log. Removal of filled or
// discarded orders is strategy-specific and stays with the caller.
func (ob *OrderBook) executeTrade(buy *Order, sell *Order, price Uint, quantity Uint) error {
	if err := buy.reduce(quantity); err != nil {
		return err
	}
	if err := sell.reduce(quantity); err != nil {
		return err
	}

	trade := NewTrade(buy.id, sell.id, price, quantity, ob.clock.Now())
	ob.trades = append(ob.trades, trade)

	// Call the corresponding handler
	ob.handler.OnExecuteTrade(ob, trade)

	return nil
}

// settle removes the order when it is fully executed, otherwise reports
// it as updated. Used by strategies after a matching round.
func (ob *OrderBook) settle(order *Order) error {
	if !order.IsExecuted() {
		ob.handler.OnUpdateOrder(ob, order)
		return nil
	}
	if err := ob.unlink(order); err != nil {
		return err
	}
	ob.handler.OnDeleteOrder(ob, order)
	ob.allocator.PutOrder(order)
	return nil
}

// discard removes the order regardless of its remaining quantity.
func (ob *OrderBook) discard(order *Order) error {
	if err := ob.unlink(order); err != nil {
		return err
	}
	ob.handler.OnDeleteOrder(ob, order)
	ob.allocator.PutOrder(order)
	return nil
}

// reject removes the order without execution and reports the rejection.
func (ob *OrderBook) reject(order *Order) error {
	if err := ob.unlink(order); err != nil {
		return err
	}
	ob.handler.OnRejectOrder(ob, order)
	ob.allocator.PutOrder(order)
	return nil
}
