package matching

//go:generate mockgen -destination=mocks/interfaces.go -package=mockmatching . Handler
type Handler interface {

	// Order book handlers
	OnAddOrderBook(orderBook *OrderBook)
	OnDeleteOrderBook(orderBook *OrderBook)

	// Orders handlers
	OnAddOrder(orderBook *OrderBook, order *Order)
	OnUpdateOrder(orderBook *OrderBook, order *Order)
	OnDeleteOrder(orderBook *OrderBook, order *Order)

	// OnExpireOrder is called when an order is removed by the expiry purge.
	OnExpireOrder(orderBook *OrderBook, order *Order)

	// OnRejectOrder is called when a fill-or-kill order is discarded
	// because the counter side cannot cover its full quantity.
	OnRejectOrder(orderBook *OrderBook, order *Order)

	// Matching handlers
	// NOTE: OnExecuteTrade is called AFTER both orders' remaining
	// quantities are reduced by the trade quantity.
	OnExecuteTrade(orderBook *OrderBook, trade Trade)

	// Errors handler
	OnError(orderBook *OrderBook, err error)
}
