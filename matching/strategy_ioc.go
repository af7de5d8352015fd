package matching

// iocStrategy matches a pair of crossed top orders of which at least one
// is immediate-or-cancel. One round executes a single trade for the
// overlapping quantity at the sell order's price, then discards the
// unexecuted remainder of every IOC side. A non-IOC counterparty keeps
// its remainder resting on the book.
type iocStrategy struct{}

func (iocStrategy) CanHandle(topBid *Order, topAsk *Order) bool {
	return topBid.IsIOC() || topAsk.IsIOC()
}

func (iocStrategy) Match(ob *OrderBook) error {
	topBid, topAsk := ob.TopBid(), ob.TopAsk()

	quantity := Min(topBid.restQuantity, topAsk.restQuantity)
	if err := ob.executeTrade(topBid, topAsk, topAsk.price, quantity); err != nil {
		return err
	}

	if err := settleImmediate(ob, topBid); err != nil {
		return err
	}
	return settleImmediate(ob, topAsk)
}

// settleImmediate removes an IOC order regardless of its remainder and
// settles any other order normally.
func settleImmediate(ob *OrderBook, order *Order) error {
	if order.IsIOC() && !order.IsExecuted() {
		return ob.discard(order)
	}
	return ob.settle(order)
}
