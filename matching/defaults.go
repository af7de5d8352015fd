package matching

import "time"

const (
	// defaultOrderBookTaskQueueSize specifies size of queue of tasks which should be performed on single order book.
	defaultOrderBookTaskQueueSize = 256

	// defaultReservedOrderSlots specifies initial size of hashmap array storing orders by order id separately for each order book.
	defaultReservedOrderSlots = 1024

	// defaultReservedOrderBookSlots specifies initial size of hashmap array storing order books by symbol.
	defaultReservedOrderBookSlots = 64

	// defaultOrderLifetime is the expiry applied to orders created without an explicit one.
	defaultOrderLifetime = 60 * time.Second
)
