package matching

import (
	"fmt"
	"time"
)

// Order contains information about a single limit order.
// An order is an instruction to buy or sell a given quantity of an
// instrument at the given limit price or better. Identity (id), side,
// symbol, limit price and expiry are immutable after creation; only the
// remaining quantity changes while the order rests in an order book.
type Order struct {
	id          uint64
	symbol      string
	side        OrderSide
	timeInForce OrderTimeInForce

	price        Uint
	quantity     Uint
	restQuantity Uint

	// Arrival time is the tie-break for price priority: among orders at
	// the same price, the earlier arrival ranks first.
	arrival time.Time

	// Expiry is the point in time after which the order is no longer
	// eligible to rest in the book and is removed by the expiry purge.
	expiry time.Time
}

////////////////////////////////////////////////////////////////

// ID returns the order ID.
func (o *Order) ID() uint64 {
	return o.id
}

// Symbol returns the instrument symbol of the order.
func (o *Order) Symbol() string {
	return o.symbol
}

////////////////////////////////////////////////////////////////

// Side returns the market side of the order.
func (o *Order) Side() OrderSide {
	return o.side
}

// IsBuy returns true if buy order.
func (o *Order) IsBuy() bool {
	return o.side == OrderSideBuy
}

// IsSell returns true if sell order.
func (o *Order) IsSell() bool {
	return o.side == OrderSideSell
}

////////////////////////////////////////////////////////////////

// TimeInForce returns the time in force option of the order.
func (o *Order) TimeInForce() OrderTimeInForce {
	return o.timeInForce
}

// IsGTC returns true if 'Good-Till-Cancelled' order.
func (o *Order) IsGTC() bool {
	return o.timeInForce == OrderTimeInForceGTC
}

// IsIOC returns true if 'Immediate-Or-Cancel' order.
func (o *Order) IsIOC() bool {
	return o.timeInForce == OrderTimeInForceIOC
}

// IsFOK returns true if 'Fill-Or-Kill' order.
func (o *Order) IsFOK() bool {
	return o.timeInForce == OrderTimeInForceFOK
}

////////////////////////////////////////////////////////////////

// Price returns the limit price of the order.
func (o *Order) Price() Uint {
	return o.price
}

// Quantity returns the original order quantity.
func (o *Order) Quantity() Uint {
	return o.quantity
}

// RestQuantity returns the order remaining quantity.
func (o *Order) RestQuantity() Uint {
	return o.restQuantity
}

// ExecutedQuantity returns the order executed quantity.
func (o *Order) ExecutedQuantity() Uint {
	return o.quantity.Sub(o.restQuantity)
}

// IsExecuted returns true if the order is completely executed.
func (o *Order) IsExecuted() bool {
	return o.restQuantity.IsZero()
}

////////////////////////////////////////////////////////////////

// Arrival returns the order arrival time.
func (o *Order) Arrival() time.Time {
	return o.arrival
}

// Expiry returns the order expiry time.
func (o *Order) Expiry() time.Time {
	return o.expiry
}

// IsExpired returns true if the order expiry is before the given time.
func (o *Order) IsExpired(now time.Time) bool {
	return o.expiry.Before(now)
}

////////////////////////////////////////////////////////////////

// Validate returns an error if the order fails to pass validation
// so it can be used safely.
func (o *Order) Validate() error {
	if o.id == 0 {
		return ErrInvalidOrderID
	}
	if o.symbol == "" {
		return ErrInvalidSymbol
	}
	if !o.side.Valid() {
		return ErrInvalidOrderSide
	}
	if !o.timeInForce.Valid() {
		return ErrInvalidOrderTimeInForce
	}
	if o.price.IsZero() {
		return ErrInvalidOrderPrice
	}
	if o.restQuantity.IsZero() {
		return ErrInvalidOrderQuantity
	}
	return nil
}

// reduce decreases the remaining quantity by the given amount.
// Reducing by zero or by more than the remaining quantity indicates
// corrupted matching state and fails fast.
func (o *Order) reduce(amount Uint) error {
	if amount.IsZero() || amount.GreaterThan(o.restQuantity) {
		return fmt.Errorf("%w: reduce %s of %s (order id: %d)",
			ErrInvalidQuantityReduction, amount.ToFloatString(), o.restQuantity.ToFloatString(), o.id)
	}
	o.restQuantity = o.restQuantity.Sub(amount)
	return nil
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{id: %d, %s %s %s @ %s, rest: %s, tif: %s}",
		o.id, o.side, o.symbol, o.quantity.ToFloatString(), o.price.ToFloatString(),
		o.restQuantity.ToFloatString(), o.timeInForce)
}
