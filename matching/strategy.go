package matching

// strategy performs one matching round for a pair of crossed top orders.
// Strategies are consulted in fixed precedence order (FOK, IOC, GTC) and
// exactly the first applicable one runs per round.
type strategy interface {
	// CanHandle reports whether the strategy applies to the given
	// crossed top orders. Both orders are non-nil and crossed.
	CanHandle(topBid *Order, topAsk *Order) bool

	// Match performs one matching round on the order book. The round
	// may execute one or more trades and remove filled or discarded
	// orders. Crossing is re-evaluated by the caller afterwards.
	Match(ob *OrderBook) error
}
