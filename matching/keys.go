package matching

// bookKey orders one side of the book by price-time priority. Ties on
// price are broken by ascending arrival time; the unique order id breaks
// equal-arrival ties deterministically and makes the key unique.
type bookKey struct {
	price   Uint
	arrival int64 // unix nanoseconds
	id      uint64
}

// expiryKey orders the expiry index by ascending expiry time, with the
// unique order id as the final component for uniqueness.
type expiryKey struct {
	expiry int64 // unix nanoseconds
	id     uint64
}

func newBookKey(order *Order) bookKey {
	return bookKey{
		price:   order.price,
		arrival: order.arrival.UnixNano(),
		id:      order.id,
	}
}

func newExpiryKey(order *Order) expiryKey {
	return expiryKey{
		expiry: order.expiry.UnixNano(),
		id:     order.id,
	}
}

// compareBidKeys yields descending price, then ascending arrival, then
// ascending id: the best bid comes first.
func compareBidKeys(a, b bookKey) int {
	if cmp := b.price.Cmp(a.price); cmp != 0 {
		return cmp
	}
	return compareTimeID(a.arrival, a.id, b.arrival, b.id)
}

// compareAskKeys yields ascending price, then ascending arrival, then
// ascending id: the best ask comes first.
func compareAskKeys(a, b bookKey) int {
	if cmp := a.price.Cmp(b.price); cmp != 0 {
		return cmp
	}
	return compareTimeID(a.arrival, a.id, b.arrival, b.id)
}

func compareExpiryKeys(a, b expiryKey) int {
	return compareTimeID(a.expiry, a.id, b.expiry, b.id)
}

func compareTimeID(aTime int64, aID uint64, bTime int64, bID uint64) int {
	switch {
	case aTime < bTime:
		return -1
	case aTime > bTime:
		return 1
	case aID < bID:
		return -1
	case aID > bID:
		return 1
	default:
		return 0
	}
}
