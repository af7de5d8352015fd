package matching

import (
	"errors"
)

// Errors used by the package.
var (
	ErrOrderBookNotFound        = errors.New("order book is not found")
	ErrOrderBookDuplicate       = errors.New("order book is duplicated")
	ErrOrderDuplicate           = errors.New("order is duplicated")
	ErrOrderNotFound            = errors.New("order is not found")
	ErrInvalidSymbol            = errors.New("invalid symbol")
	ErrInvalidOrderID           = errors.New("invalid order id")
	ErrInvalidOrderSide         = errors.New("invalid order side")
	ErrInvalidOrderPrice        = errors.New("invalid order price")
	ErrInvalidOrderQuantity     = errors.New("invalid order quantity")
	ErrInvalidOrderTimeInForce  = errors.New("invalid order time in force")
	ErrInvalidQuantityReduction = errors.New("invalid order quantity reduction")
)
