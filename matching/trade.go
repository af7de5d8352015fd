package matching

import (
	"fmt"
	"time"
)

// Trade is an immutable record of one execution between a buy order and
// a sell order. The execution price is decided by the matching strategy
// that produced the trade, never by the trade itself.
type Trade struct {
	buyOrderID  uint64
	sellOrderID uint64
	price       Uint
	quantity    Uint
	timestamp   time.Time
}

// NewTrade creates a new trade record.
func NewTrade(buyOrderID, sellOrderID uint64, price, quantity Uint, timestamp time.Time) Trade {
	return Trade{
		buyOrderID:  buyOrderID,
		sellOrderID: sellOrderID,
		price:       price,
		quantity:    quantity,
		timestamp:   timestamp,
	}
}

// BuyOrderID returns the ID of the buy order.
func (t Trade) BuyOrderID() uint64 {
	return t.buyOrderID
}

// SellOrderID returns the ID of the sell order.
func (t Trade) SellOrderID() uint64 {
	return t.sellOrderID
}

// Price returns the price at which the trade was executed.
func (t Trade) Price() Uint {
	return t.price
}

// Quantity returns the quantity traded.
func (t Trade) Quantity() Uint {
	return t.quantity
}

// Timestamp returns the time of the trade.
func (t Trade) Timestamp() time.Time {
	return t.timestamp
}

func (t Trade) String() string {
	return fmt.Sprintf("Trade{buy: #%d, sell: #%d, qty: %s @ %s, time: %s}",
		t.buyOrderID, t.sellOrderID, t.quantity.ToFloatString(), t.price.ToFloatString(),
		t.timestamp.Format(time.RFC3339Nano))
}
