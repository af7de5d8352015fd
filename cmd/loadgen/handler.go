package main

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/quantgrid/tif-matching-engine/matching"
)

// zapHandler logs engine events and keeps per-event counters so the run
// summary can be printed at the end.
type zapHandler struct {
	log *zap.SugaredLogger

	orders   atomic.Uint64
	updates  atomic.Uint64
	deletes  atomic.Uint64
	expired  atomic.Uint64
	rejected atomic.Uint64
	trades   atomic.Uint64
	errors   atomic.Uint64
}

func newZapHandler(log *zap.Logger) *zapHandler {
	return &zapHandler{log: log.Sugar()}
}

func (h *zapHandler) OnAddOrderBook(ob *matching.OrderBook) {
	h.log.Infow("order_book_added", "symbol", ob.Symbol())
}

func (h *zapHandler) OnDeleteOrderBook(ob *matching.OrderBook) {
	h.log.Infow("order_book_deleted", "symbol", ob.Symbol())
}

func (h *zapHandler) OnAddOrder(ob *matching.OrderBook, order *matching.Order) {
	h.orders.Add(1)
	h.log.Debugw("order_added",
		"symbol", ob.Symbol(),
		"id", order.ID(),
		"side", order.Side().String(),
		"tif", order.TimeInForce().String(),
		"price", order.Price().ToFloatString(),
		"quantity", order.Quantity().ToFloatString(),
	)
}

func (h *zapHandler) OnUpdateOrder(ob *matching.OrderBook, order *matching.Order) {
	h.updates.Add(1)
	h.log.Debugw("order_updated",
		"symbol", ob.Symbol(),
		"id", order.ID(),
		"rest_quantity", order.RestQuantity().ToFloatString(),
	)
}

func (h *zapHandler) OnDeleteOrder(ob *matching.OrderBook, order *matching.Order) {
	h.deletes.Add(1)
	h.log.Debugw("order_deleted", "symbol", ob.Symbol(), "id", order.ID())
}

func (h *zapHandler) OnExpireOrder(ob *matching.OrderBook, order *matching.Order) {
	h.expired.Add(1)
	h.log.Debugw("order_expired", "symbol", ob.Symbol(), "id", order.ID())
}

func (h *zapHandler) OnRejectOrder(ob *matching.OrderBook, order *matching.Order) {
	h.rejected.Add(1)
	h.log.Debugw("order_rejected",
		"symbol", ob.Symbol(),
		"id", order.ID(),
		"rest_quantity", order.RestQuantity().ToFloatString(),
	)
}

func (h *zapHandler) OnExecuteTrade(ob *matching.OrderBook, trade matching.Trade) {
	h.trades.Add(1)
	h.log.Debugw("trade_executed",
		"symbol", ob.Symbol(),
		"buy_order_id", trade.BuyOrderID(),
		"sell_order_id", trade.SellOrderID(),
		"price", trade.Price().ToFloatString(),
		"quantity", trade.Quantity().ToFloatString(),
	)
}

func (h *zapHandler) OnError(ob *matching.OrderBook, err error) {
	h.errors.Add(1)
	h.log.Errorw("engine_error", "symbol", ob.Symbol(), "error", err)
}
