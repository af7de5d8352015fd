package matching

// OrderTimeInForce is an enumeration of possible order execution options.
type OrderTimeInForce uint8

const (
	// Good-Till-Cancelled (GTC) - A GTC order rests in the order book
	// until it is completely executed, cancelled or expired.
	OrderTimeInForceGTC OrderTimeInForce = iota + 1
	// Immediate-Or-Cancel (IOC) - An IOC order executes immediately against
	// whatever quantity is available. Any portion of the order that cannot
	// be filled immediately is cancelled.
	OrderTimeInForceIOC
	// Fill-Or-Kill (FOK) - An FOK order must be executed immediately in its
	// entirety; otherwise the entire order is cancelled (no partial
	// execution of the order is allowed).
	OrderTimeInForceFOK
)

// Valid returns true if the time in force is one of the known options.
func (tif OrderTimeInForce) Valid() bool {
	switch tif {
	case OrderTimeInForceGTC, OrderTimeInForceIOC, OrderTimeInForceFOK:
		return true
	default:
		return false
	}
}

func (tif OrderTimeInForce) String() string {
	switch tif {
	case OrderTimeInForceGTC:
		return "good-till-cancelled"
	case OrderTimeInForceIOC:
		return "immediate-or-cancel"
	case OrderTimeInForceFOK:
		return "fill-or-kill"
	default:
		return "unknown"
	}
}
