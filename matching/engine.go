package matching

import (
	"fmt"
	"time"

	"github.com/tidwall/hashmap"
)

// Engine is used to manage the market with orders and per-symbol order
// books. Incoming orders are routed to the order book of their symbol,
// which is created on demand. Automatic orders matching can be enabled
// with EnableMatching() method or can be manually performed with Match()
// method.
// NOTE: The matching engine is thread safe only when created with multithread flag.
type Engine struct {
	handler Handler

	// Allocator shared by all order books
	allocator *Allocator

	// Order books routed by symbol
	orderBooks *hashmap.Map[string, *OrderBook]

	// Order id generation
	sequence Sequence

	// Time source
	clock Clock

	// Automatic matching
	matching bool

	// Multi-thread mode
	multithread bool
}

// Option configures the Engine.
type Option func(*Engine)

// WithClock sets the engine time source. Used by tests to control order
// arrival and expiry times.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithSequence sets the engine order id generator.
func WithSequence(sequence Sequence) Option {
	return func(e *Engine) { e.sequence = sequence }
}

// NewEngine creates and returns new Engine instance.
func NewEngine(handler Handler, multithread bool, opts ...Option) *Engine {
	e := &Engine{
		handler:     handler,
		allocator:   NewAllocator(),
		orderBooks:  hashmap.New[string, *OrderBook](defaultReservedOrderBookSlots),
		sequence:    NewSequence(),
		clock:       RealClock{},
		multithread: multithread,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start starts the matching engine.
func (e *Engine) Start() {}

// Stop stops the matching engine.
// It releases all internally used order books and cleans whole order book state.
func (e *Engine) Stop(forced bool) {

	// Close all order book tasks channels
	for _, ob := range e.orderBooks.Values() {
		close(ob.chanTasks)
		if forced {
			close(ob.chanForcedStop)
		}
	}

	// Wait until everything is done
	for _, ob := range e.orderBooks.Values() {
		ob.wg.Wait()
	}

	// Clean all existing order books
	for _, ob := range e.orderBooks.Values() {
		ob.Clean()
	}
	e.orderBooks = hashmap.New[string, *OrderBook](defaultReservedOrderBookSlots)
}

////////////////////////////////////////////////////////////////
// Engine common
////////////////////////////////////////////////////////////////

// OrderBook returns the order book with given symbol or nil when no such
// book exists.
func (e *Engine) OrderBook(symbol string) *OrderBook {
	if ob, ok := e.orderBooks.Get(symbol); ok {
		return ob
	}
	return nil
}

// OrderBooks returns total amount of currently existing order books.
func (e *Engine) OrderBooks() int {
	return e.orderBooks.Len()
}

// Orders returns total amount of currently existing orders.
func (e *Engine) Orders() int {
	orders := 0
	for _, ob := range e.orderBooks.Values() {
		orders += ob.Size()
	}
	return orders
}

// IsMatchingEnabled returns true if automatic matching is enabled.
func (e *Engine) IsMatchingEnabled() bool {
	return e.matching
}

// EnableMatching enables automatic matching.
func (e *Engine) EnableMatching() {
	e.matching = true
	e.Match()
}

// DisableMatching disables automatic matching.
func (e *Engine) DisableMatching() {
	e.matching = false
}

////////////////////////////////////////////////////////////////
// Order books management
////////////////////////////////////////////////////////////////

// AddOrderBook creates new order book and adds it to the engine.
func (e *Engine) AddOrderBook(symbol string) (*OrderBook, error) {
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}

	// Ensure order book does not exist
	if _, ok := e.orderBooks.Get(symbol); ok {
		return nil, ErrOrderBookDuplicate
	}

	return e.addOrderBook(symbol), nil
}

// DeleteOrderBook deletes order book from the engine.
func (e *Engine) DeleteOrderBook(symbol string) (*OrderBook, error) {

	// Ensure order book exists
	ob, ok := e.orderBooks.Get(symbol)
	if !ok {
		return nil, ErrOrderBookNotFound
	}

	// Close order book tasks channel
	close(ob.chanTasks)

	// Wait until all order book tasks are performed
	ob.wg.Wait()

	// Call the corresponding handler
	e.handler.OnDeleteOrderBook(ob)

	// Clean and delete order book
	ob.Clean()
	e.orderBooks.Delete(symbol)

	return ob, nil
}

func (e *Engine) addOrderBook(symbol string) *OrderBook {
	ob := NewOrderBook(e.allocator, symbol, e.handler, e.clock, defaultOrderBookTaskQueueSize)
	e.orderBooks.Set(symbol, ob)

	// Call the corresponding handler
	e.handler.OnAddOrderBook(ob)

	// Run goroutine unique to the order book to perform order book specific tasks.
	// The wait group is incremented here so that Stop always observes the
	// goroutine even when it has not been scheduled yet.
	if e.multithread {
		ob.wg.Add(1)
		go e.loopOrderBook(ob)
	}

	return ob
}

////////////////////////////////////////////////////////////////
// Orders management
////////////////////////////////////////////////////////////////

// NewOrder builds an order with the next engine order id and the current
// engine time as arrival. A zero expiry is replaced with the default
// order lifetime counted from arrival.
func (e *Engine) NewOrder(symbol string, side OrderSide, timeInForce OrderTimeInForce, price Uint, quantity Uint, expiry time.Time) Order {
	arrival := e.clock.Now()
	if expiry.IsZero() {
		expiry = arrival.Add(defaultOrderLifetime)
	}
	return NewOrderAt(e.sequence.Next(), symbol, side, timeInForce, price, quantity, arrival, expiry)
}

// AddOrder adds new order to the engine. The order book of the order
// symbol is created when it does not exist yet.
func (e *Engine) AddOrder(order Order) error {

	// Validate order parameters
	if err := order.Validate(); err != nil {
		return err
	}

	// Get or create the order book for the order
	ob := e.OrderBook(order.symbol)
	if ob == nil {
		ob = e.addOrderBook(order.symbol)
	}

	task := func(ob *OrderBook) error {
		if err := ob.AddOrder(order); err != nil {
			return err
		}

		// Automatic order matching
		if e.matching {
			if err := ob.MatchOrders(); err != nil {
				return fmt.Errorf("failed to match: %w", err)
			}
		}

		return nil
	}

	return e.performOrderBookTask(ob, task)
}

// CancelOrder deletes the order from the engine.
func (e *Engine) CancelOrder(symbol string, orderID uint64) error {

	// Get the valid order book for the order
	ob := e.OrderBook(symbol)
	if ob == nil {
		return ErrOrderBookNotFound
	}

	task := func(ob *OrderBook) error {
		return ob.CancelOrder(orderID)
	}

	return e.performOrderBookTask(ob, task)
}

// UpdateOrder modifies the order with the given new price and quantity.
// The modified order loses its former time priority.
func (e *Engine) UpdateOrder(symbol string, orderID uint64, newPrice Uint, newQuantity Uint) error {

	// Get the valid order book for the order
	ob := e.OrderBook(symbol)
	if ob == nil {
		return ErrOrderBookNotFound
	}

	task := func(ob *OrderBook) error {
		if err := ob.UpdateOrder(orderID, newPrice, newQuantity); err != nil {
			return err
		}

		// Automatic order matching
		if e.matching {
			if err := ob.MatchOrders(); err != nil {
				return fmt.Errorf("failed to match: %w", err)
			}
		}

		return nil
	}

	return e.performOrderBookTask(ob, task)
}

////////////////////////////////////////////////////////////////
// Matching
////////////////////////////////////////////////////////////////

// Match matches crossed orders in all order books.
// Method will match all crossed orders in each order book. Buy orders will be
// matched with sell orders starting from the top of the book. Matched orders
// will be executed and deleted from the order book. After the matching
// operation each order book will have the top (best) bid price guarantied
// less than the top (best) ask price!
func (e *Engine) Match() {
	task := func(ob *OrderBook) error {
		if err := ob.MatchOrders(); err != nil {
			return fmt.Errorf("failed to match: %w", err)
		}
		return nil
	}
	for _, ob := range e.orderBooks.Values() {
		e.performOrderBookTask(ob, task)
	}
}

// MatchSymbol matches crossed orders in the order book of the given symbol.
func (e *Engine) MatchSymbol(symbol string) error {
	ob := e.OrderBook(symbol)
	if ob == nil {
		return ErrOrderBookNotFound
	}

	task := func(ob *OrderBook) error {
		if err := ob.MatchOrders(); err != nil {
			return fmt.Errorf("failed to match: %w", err)
		}
		return nil
	}

	return e.performOrderBookTask(ob, task)
}

////////////////////////////////////////////////////////////////
// Expiration
////////////////////////////////////////////////////////////////

// PurgeExpiredOrders removes expired orders from all order books using
// the current engine time.
func (e *Engine) PurgeExpiredOrders() {
	now := e.clock.Now()
	task := func(ob *OrderBook) error {
		return ob.PurgeExpiredOrders(now)
	}
	for _, ob := range e.orderBooks.Values() {
		e.performOrderBookTask(ob, task)
	}
}

// PurgeExpiredOrdersAt removes orders of the given symbol expired at the
// given time.
func (e *Engine) PurgeExpiredOrdersAt(symbol string, now time.Time) error {
	ob := e.OrderBook(symbol)
	if ob == nil {
		return ErrOrderBookNotFound
	}

	task := func(ob *OrderBook) error {
		return ob.PurgeExpiredOrders(now)
	}

	return e.performOrderBookTask(ob, task)
}

////////////////////////////////////////////////////////////////
// Loops
////////////////////////////////////////////////////////////////

// loopOrderBook is unique for order book goroutine separately working with given order book and performing enqueued tasks.
func (e *Engine) loopOrderBook(ob *OrderBook) {
	defer ob.wg.Done()

	// Loop over order book tasks from the queue
	for {
		select {
		case task, ok := <-ob.chanTasks:
			if !ok {
				return
			}
			// Perform task
			if err := task(ob); err != nil {
				// Call the corresponding handler
				e.handler.OnError(ob, err)
			}
		case <-ob.chanForcedStop:
			return
		}
	}
}

////////////////////////////////////////////////////////////////
// Internal helpers
////////////////////////////////////////////////////////////////

func (e *Engine) performOrderBookTask(ob *OrderBook, task func(ob *OrderBook) error) error {
	if e.multithread {
		ob.chanTasks <- task
		return nil
	}
	err := task(ob)
	if err != nil {
		// Call the corresponding handler
		e.handler.OnError(ob, err)
	}
	return err
}
