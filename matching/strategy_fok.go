package matching

// fokStrategy resolves a crossed fill-or-kill order atomically. One
// round either fills the FOK order completely against one or more
// resting counterparties, each trade priced at the resting order's
// price, or removes it without executing anything. When both top orders
// are FOK the buy side is resolved first.
type fokStrategy struct{}

func (fokStrategy) CanHandle(topBid *Order, topAsk *Order) bool {
	return topBid.IsFOK() || topAsk.IsFOK()
}

func (fokStrategy) Match(ob *OrderBook) error {
	topBid, topAsk := ob.TopBid(), ob.TopAsk()

	order := topBid
	if !order.IsFOK() {
		order = topAsk
	}

	makers, feasible := collectMakers(ob, order)
	if !feasible {
		return ob.reject(order)
	}

	for _, maker := range makers {
		quantity := Min(order.restQuantity, maker.restQuantity)
		buy, sell := order, maker
		if order.IsSell() {
			buy, sell = maker, order
		}
		if err := ob.executeTrade(buy, sell, maker.price, quantity); err != nil {
			return err
		}
		if err := ob.settle(maker); err != nil {
			return err
		}
	}

	return ob.settle(order)
}

// collectMakers gathers resting counterparties of the FOK order in
// priority order until their combined quantity covers it. The opposite
// side index keeps crossing candidates as a prefix of priority order, so
// the scan stops at the first non-crossing price.
func collectMakers(ob *OrderBook, order *Order) (makers []*Order, feasible bool) {
	needed := order.restQuantity
	visit := func(maker *Order) bool {
		if order.IsBuy() && order.price.LessThan(maker.price) {
			return true
		}
		if order.IsSell() && maker.price.LessThan(order.price) {
			return true
		}
		makers = append(makers, maker)
		if maker.restQuantity.GreaterThanOrEqualTo(needed) {
			feasible = true
			return true
		}
		needed = needed.Sub(maker.restQuantity)
		return false
	}
	if order.IsBuy() {
		ob.IterateAsks(visit)
	} else {
		ob.IterateBids(visit)
	}
	return makers, feasible
}
