package matching

import "time"

// NewOrderAt creates an order with all fields given explicitly. Callers
// that want engine-generated ids and arrival times should use
// Engine.NewOrder instead.
func NewOrderAt(
	id uint64,
	symbol string,
	side OrderSide,
	timeInForce OrderTimeInForce,
	price Uint,
	quantity Uint,
	arrival time.Time,
	expiry time.Time,
) Order {
	return Order{
		id:           id,
		symbol:       symbol,
		side:         side,
		timeInForce:  timeInForce,
		price:        price,
		quantity:     quantity,
		restQuantity: quantity,
		arrival:      arrival,
		expiry:       expiry,
	}
}

// NewGTCOrder creates a good-till-cancelled order.
func NewGTCOrder(id uint64, symbol string, side OrderSide, price Uint, quantity Uint, arrival time.Time, expiry time.Time) Order {
	return NewOrderAt(id, symbol, side, OrderTimeInForceGTC, price, quantity, arrival, expiry)
}

// NewIOCOrder creates an immediate-or-cancel order.
func NewIOCOrder(id uint64, symbol string, side OrderSide, price Uint, quantity Uint, arrival time.Time, expiry time.Time) Order {
	return NewOrderAt(id, symbol, side, OrderTimeInForceIOC, price, quantity, arrival, expiry)
}

// NewFOKOrder creates a fill-or-kill order.
func NewFOKOrder(id uint64, symbol string, side OrderSide, price Uint, quantity Uint, arrival time.Time, expiry time.Time) Order {
	return NewOrderAt(id, symbol, side, OrderTimeInForceFOK, price, quantity, arrival, expiry)
}
