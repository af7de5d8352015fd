package matching

// gtcStrategy matches a pair of crossed good-till-cancelled orders. One
// round executes a single trade for the overlapping quantity at the sell
// order's price. Partially filled orders keep their place in the queue.
type gtcStrategy struct{}

func (gtcStrategy) CanHandle(topBid *Order, topAsk *Order) bool {
	return topBid.IsGTC() && topAsk.IsGTC()
}

func (gtcStrategy) Match(ob *OrderBook) error {
	topBid, topAsk := ob.TopBid(), ob.TopAsk()

	quantity := Min(topBid.restQuantity, topAsk.restQuantity)
	if err := ob.executeTrade(topBid, topAsk, topAsk.price, quantity); err != nil {
		return err
	}

	if err := ob.settle(topBid); err != nil {
		return err
	}
	return ob.settle(topAsk)
}
