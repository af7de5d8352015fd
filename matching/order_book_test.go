package matching_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	matching "github.com/quantgrid/tif-matching-engine/matching"
	mockmatching "github.com/quantgrid/tif-matching-engine/matching/mocks"
)

func TestOrderBook(t *testing.T) {
	const symbol = "BTC-USDT"

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	base := time.Unix(1_700_000_000, 0)
	expiry := base.Add(time.Hour)

	units := func(v uint64) matching.Uint {
		return matching.NewUint(v).Mul64(matching.UintPrecision)
	}

	newBook := func(t *testing.T, clock matching.Clock) *matching.OrderBook {
		handler := mockmatching.NewMockHandler(ctrl)
		setupMockHandler(t, handler)
		return matching.NewOrderBook(matching.NewAllocator(), symbol, handler, clock, 16)
	}

	t.Run("bids iterate by descending price then arrival", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(1, symbol, matching.OrderSideBuy, units(100), units(1), base.Add(2*time.Second), expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(2, symbol, matching.OrderSideBuy, units(105), units(1), base.Add(3*time.Second), expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(3, symbol, matching.OrderSideBuy, units(100), units(1), base.Add(1*time.Second), expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(4, symbol, matching.OrderSideBuy, units(110), units(1), base.Add(4*time.Second), expiry)))

		var ids []uint64
		ob.IterateBids(func(order *matching.Order) bool {
			ids = append(ids, order.ID())
			return false
		})
		require.Equal(t, []uint64{4, 2, 3, 1}, ids)
		require.Equal(t, uint64(4), ob.TopBid().ID())
	})

	t.Run("asks iterate by ascending price then arrival", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(1, symbol, matching.OrderSideSell, units(100), units(1), base.Add(2*time.Second), expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(2, symbol, matching.OrderSideSell, units(95), units(1), base.Add(3*time.Second), expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(3, symbol, matching.OrderSideSell, units(100), units(1), base.Add(1*time.Second), expiry)))

		var ids []uint64
		ob.IterateAsks(func(order *matching.Order) bool {
			ids = append(ids, order.ID())
			return false
		})
		require.Equal(t, []uint64{2, 3, 1}, ids)
		require.Equal(t, uint64(2), ob.TopAsk().ID())
	})

	t.Run("indices stay consistent through add, cancel and match", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(1, symbol, matching.OrderSideBuy, units(100), units(5), base, expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(2, symbol, matching.OrderSideSell, units(105), units(5), base, expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(3, symbol, matching.OrderSideBuy, units(99), units(5), base, expiry)))
		require.Equal(t, 3, ob.Size())

		require.NoError(t, ob.CancelOrder(3))
		require.Equal(t, 2, ob.Size())
		require.Nil(t, ob.Order(3))

		// Crossing sell triggers one full fill of order 1
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(4, symbol, matching.OrderSideSell, units(100), units(5), base.Add(time.Second), expiry)))
		require.NoError(t, ob.MatchOrders())

		require.Nil(t, ob.Order(1))
		require.Nil(t, ob.Order(4))
		require.NotNil(t, ob.Order(2))
		require.Equal(t, 1, ob.Size())

		// Every iterated order must be reachable through the id index
		seen := 0
		check := func(order *matching.Order) bool {
			require.Same(t, order, ob.Order(order.ID()))
			seen++
			return false
		}
		ob.IterateBids(check)
		ob.IterateAsks(check)
		require.Equal(t, ob.Size(), seen)
	})

	t.Run("trades execute at the sell order price", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(1, symbol, matching.OrderSideBuy, units(105), units(5), base, expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(2, symbol, matching.OrderSideSell, units(100), units(5), base.Add(time.Second), expiry)))
		require.NoError(t, ob.MatchOrders())

		trades := ob.TradeHistory()
		require.Len(t, trades, 1)
		require.True(t, trades[0].Price().Equals(units(100)))
		require.Equal(t, uint64(1), trades[0].BuyOrderID())
		require.Equal(t, uint64(2), trades[0].SellOrderID())
	})

	t.Run("fill-or-kill trades execute at each resting order price", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		// Resting bids at 105 and 102, sell FOK at 100 for their combined quantity
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(1, symbol, matching.OrderSideBuy, units(105), units(4), base, expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(2, symbol, matching.OrderSideBuy, units(102), units(6), base, expiry)))
		require.NoError(t, ob.AddOrder(matching.NewFOKOrder(3, symbol, matching.OrderSideSell, units(100), units(10), base.Add(time.Second), expiry)))
		require.NoError(t, ob.MatchOrders())

		require.True(t, ob.IsEmpty())
		trades := ob.TradeHistory()
		require.Len(t, trades, 2)
		require.True(t, trades[0].Price().Equals(units(105)))
		require.True(t, trades[0].Quantity().Equals(units(4)))
		require.True(t, trades[1].Price().Equals(units(102)))
		require.True(t, trades[1].Quantity().Equals(units(6)))
	})

	t.Run("quantity is conserved across a matching round", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(1, symbol, matching.OrderSideBuy, units(100), units(7), base, expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(2, symbol, matching.OrderSideSell, units(100), units(3), base, expiry)))
		require.NoError(t, ob.MatchOrders())

		trades := ob.TradeHistory()
		require.Len(t, trades, 1)
		require.True(t, trades[0].Quantity().Equals(units(3)))

		buy := ob.Order(1)
		require.NotNil(t, buy)
		require.True(t, buy.RestQuantity().Add(buy.ExecutedQuantity()).Equals(buy.Quantity()))
		require.True(t, buy.ExecutedQuantity().Equals(units(3)))
		require.Nil(t, ob.Order(2))
	})

	t.Run("partial fill keeps original time priority", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(1, symbol, matching.OrderSideBuy, units(100), units(10), base, expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(2, symbol, matching.OrderSideBuy, units(100), units(10), base.Add(time.Second), expiry)))

		// Partially fill the first bid
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(3, symbol, matching.OrderSideSell, units(100), units(4), base.Add(2*time.Second), expiry)))
		require.NoError(t, ob.MatchOrders())

		require.Equal(t, uint64(1), ob.TopBid().ID())
		require.True(t, ob.TopBid().RestQuantity().Equals(units(6)))
	})

	t.Run("trade history is an independent copy", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(1, symbol, matching.OrderSideBuy, units(100), units(1), base, expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(2, symbol, matching.OrderSideSell, units(100), units(1), base, expiry)))
		require.NoError(t, ob.MatchOrders())

		first := ob.TradeHistory()
		require.Len(t, first, 1)

		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(3, symbol, matching.OrderSideBuy, units(100), units(1), base, expiry)))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(4, symbol, matching.OrderSideSell, units(100), units(1), base, expiry)))
		require.NoError(t, ob.MatchOrders())

		require.Len(t, first, 1)
		require.Len(t, ob.TradeHistory(), 2)
	})

	t.Run("purge stops at the first unexpired order", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(1, symbol, matching.OrderSideSell, units(100), units(5), base, base.Add(time.Minute))))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(2, symbol, matching.OrderSideSell, units(101), units(5), base, base.Add(3*time.Minute))))
		require.NoError(t, ob.AddOrder(matching.NewGTCOrder(3, symbol, matching.OrderSideBuy, units(90), units(5), base, base.Add(time.Hour))))

		require.NoError(t, ob.PurgeExpiredOrders(base.Add(2*time.Minute)))
		require.Nil(t, ob.Order(1))
		require.NotNil(t, ob.Order(2))
		require.NotNil(t, ob.Order(3))

		require.NoError(t, ob.PurgeExpiredOrders(base.Add(2*time.Hour)))
		require.True(t, ob.IsEmpty())
		require.Equal(t, 0, ob.Trades())
	})

	t.Run("add rejects malformed orders", func(t *testing.T) {
		ob := newBook(t, matching.RealClock{})

		err := ob.AddOrder(matching.NewOrderAt(1, symbol, 0, matching.OrderTimeInForceGTC, units(100), units(1), base, expiry))
		require.ErrorIs(t, err, matching.ErrInvalidOrderSide)

		err = ob.AddOrder(matching.NewOrderAt(0, symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC, units(100), units(1), base, expiry))
		require.ErrorIs(t, err, matching.ErrInvalidOrderID)

		require.True(t, ob.IsEmpty())
	})
}
