package matching_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	matching "github.com/quantgrid/tif-matching-engine/matching"
	mockmatching "github.com/quantgrid/tif-matching-engine/matching/mocks"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func TestEngine(t *testing.T) {
	const symbol = "BTC-USDT"

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	setupHandler := func(t *testing.T) matching.Handler {
		handler := mockmatching.NewMockHandler(ctrl)
		setupMockHandler(t, handler)
		return handler
	}

	units := func(v uint64) matching.Uint {
		return matching.NewUint(v).Mul64(matching.UintPrecision)
	}

	t.Run("order books are created lazily per symbol", func(t *testing.T) {
		engine := matching.NewEngine(setupHandler(t), false)
		require.Equal(t, 0, engine.OrderBooks())
		require.Nil(t, engine.OrderBook(symbol))

		require.NoError(t, engine.AddOrder(engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), units(1), time.Time{},
		)))
		require.NoError(t, engine.AddOrder(engine.NewOrder(
			"ETH-USDT", matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), units(1), time.Time{},
		)))

		require.Equal(t, 2, engine.OrderBooks())
		require.Equal(t, 2, engine.Orders())
		require.NotNil(t, engine.OrderBook(symbol))
	})

	t.Run("duplicate order book and duplicate order ids", func(t *testing.T) {
		engine := matching.NewEngine(setupHandler(t), false)

		_, err := engine.AddOrderBook(symbol)
		require.NoError(t, err)
		_, err = engine.AddOrderBook(symbol)
		require.ErrorIs(t, err, matching.ErrOrderBookDuplicate)
		_, err = engine.AddOrderBook("")
		require.ErrorIs(t, err, matching.ErrInvalidSymbol)

		order := engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), units(1), time.Time{},
		)
		require.NoError(t, engine.AddOrder(order))
		require.ErrorIs(t, engine.AddOrder(order), matching.ErrOrderDuplicate)
	})

	t.Run("operations on missing books and orders", func(t *testing.T) {
		engine := matching.NewEngine(setupHandler(t), false)

		require.ErrorIs(t, engine.CancelOrder(symbol, 1), matching.ErrOrderBookNotFound)
		require.ErrorIs(t, engine.UpdateOrder(symbol, 1, units(1), units(1)), matching.ErrOrderBookNotFound)
		require.ErrorIs(t, engine.MatchSymbol(symbol), matching.ErrOrderBookNotFound)

		_, err := engine.AddOrderBook(symbol)
		require.NoError(t, err)
		require.ErrorIs(t, engine.CancelOrder(symbol, 42), matching.ErrOrderNotFound)
		require.ErrorIs(t, engine.UpdateOrder(symbol, 42, units(1), units(1)), matching.ErrOrderNotFound)
	})

	t.Run("cancel twice reports not found the second time", func(t *testing.T) {
		engine := matching.NewEngine(setupHandler(t), false)

		order := engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), units(1), time.Time{},
		)
		require.NoError(t, engine.AddOrder(order))

		require.NoError(t, engine.CancelOrder(symbol, order.ID()))
		require.ErrorIs(t, engine.CancelOrder(symbol, order.ID()), matching.ErrOrderNotFound)
		require.True(t, engine.OrderBook(symbol).IsEmpty())
	})

	t.Run("update repositions the order by its new price", func(t *testing.T) {
		engine := matching.NewEngine(setupHandler(t), false)

		first := engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(105), units(1), time.Time{},
		)
		require.NoError(t, engine.AddOrder(first))

		second := engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), units(5), time.Time{},
		)
		require.NoError(t, engine.AddOrder(second))

		ob := engine.OrderBook(symbol)
		require.Equal(t, first.ID(), ob.TopBid().ID())

		// Price 110 moves the second order to the top of the book
		require.NoError(t, engine.UpdateOrder(symbol, second.ID(), units(110), units(10)))

		top := ob.TopBid()
		require.Equal(t, second.ID(), top.ID())
		require.True(t, top.Price().Equals(units(110)))
		require.True(t, top.Quantity().Equals(units(10)))
		require.True(t, top.RestQuantity().Equals(units(10)))
	})

	t.Run("update forfeits time priority at the same price", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		engine := matching.NewEngine(setupHandler(t), false, matching.WithClock(clock))

		first := engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), units(1), clock.now.Add(time.Hour),
		)
		require.NoError(t, engine.AddOrder(first))

		clock.now = clock.now.Add(time.Second)
		second := engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), units(1), clock.now.Add(time.Hour),
		)
		require.NoError(t, engine.AddOrder(second))

		ob := engine.OrderBook(symbol)
		require.Equal(t, first.ID(), ob.TopBid().ID())

		// Same price, fresh arrival: the first order queues behind the second
		clock.now = clock.now.Add(time.Second)
		require.NoError(t, engine.UpdateOrder(symbol, first.ID(), units(100), units(1)))
		require.Equal(t, second.ID(), ob.TopBid().ID())
	})

	t.Run("purge removes expired orders and stops at the first live one", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		engine := matching.NewEngine(setupHandler(t), false, matching.WithClock(clock))

		expired := engine.NewOrder(
			symbol, matching.OrderSideSell, matching.OrderTimeInForceGTC,
			units(100), units(5), clock.now.Add(time.Minute),
		)
		require.NoError(t, engine.AddOrder(expired))

		live := engine.NewOrder(
			symbol, matching.OrderSideSell, matching.OrderTimeInForceGTC,
			units(100), units(5), clock.now.Add(time.Hour),
		)
		require.NoError(t, engine.AddOrder(live))

		clock.now = clock.now.Add(30 * time.Minute)
		engine.PurgeExpiredOrders()

		ob := engine.OrderBook(symbol)
		require.Nil(t, ob.Order(expired.ID()))
		require.NotNil(t, ob.Order(live.ID()))
		require.Equal(t, 0, ob.Trades()) // trade history unchanged
	})

	t.Run("unset expiry falls back to the default order lifetime", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		engine := matching.NewEngine(setupHandler(t), false, matching.WithClock(clock))

		order := engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), units(1), time.Time{},
		)
		require.NoError(t, engine.AddOrder(order))
		require.Equal(t, clock.now.Add(time.Minute), order.Expiry())

		clock.now = clock.now.Add(2 * time.Minute)
		engine.PurgeExpiredOrders()
		require.True(t, engine.OrderBook(symbol).IsEmpty())
	})

	t.Run("order ids increase monotonically", func(t *testing.T) {
		engine := matching.NewEngine(setupHandler(t), false)

		last := uint64(0)
		for i := 0; i < 10; i++ {
			order := engine.NewOrder(
				symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
				units(100), units(1), time.Time{},
			)
			require.Greater(t, order.ID(), last)
			last = order.ID()
		}
	})

	t.Run("invalid orders are rejected up front", func(t *testing.T) {
		engine := matching.NewEngine(setupHandler(t), false)

		order := engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			matching.NewZeroUint(), units(1), time.Time{},
		)
		require.ErrorIs(t, engine.AddOrder(order), matching.ErrInvalidOrderPrice)

		order = engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), matching.NewZeroUint(), time.Time{},
		)
		require.ErrorIs(t, engine.AddOrder(order), matching.ErrInvalidOrderQuantity)

		order = engine.NewOrder(
			symbol, 0, matching.OrderTimeInForceGTC,
			units(100), units(1), time.Time{},
		)
		require.ErrorIs(t, engine.AddOrder(order), matching.ErrInvalidOrderSide)

		order = engine.NewOrder(
			symbol, matching.OrderSideBuy, 0,
			units(100), units(1), time.Time{},
		)
		require.ErrorIs(t, engine.AddOrder(order), matching.ErrInvalidOrderTimeInForce)

		require.Equal(t, 0, engine.Orders())
	})

	t.Run("delete order book", func(t *testing.T) {
		engine := matching.NewEngine(setupHandler(t), false)

		_, err := engine.DeleteOrderBook(symbol)
		require.ErrorIs(t, err, matching.ErrOrderBookNotFound)

		require.NoError(t, engine.AddOrder(engine.NewOrder(
			symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
			units(100), units(1), time.Time{},
		)))

		_, err = engine.DeleteOrderBook(symbol)
		require.NoError(t, err)
		require.Nil(t, engine.OrderBook(symbol))
		require.Equal(t, 0, engine.OrderBooks())
	})

	t.Run("multithread engine serializes per book", func(t *testing.T) {
		engine := matching.NewEngine(setupHandler(t), true)
		engine.Start()
		engine.EnableMatching()

		for i := 0; i < 100; i++ {
			side := matching.OrderSideBuy
			if i%2 == 1 {
				side = matching.OrderSideSell
			}
			require.NoError(t, engine.AddOrder(engine.NewOrder(
				symbol, side, matching.OrderTimeInForceGTC,
				units(100), units(1), time.Time{},
			)))
		}

		ob := engine.OrderBook(symbol)
		engine.Stop(false)

		// 50 buys and 50 sells at one price fill each other completely
		require.Equal(t, 50, ob.Trades())
	})

	t.Run("multithread stop drains pending tasks", func(t *testing.T) {
		// Stopping right after the first orders are enqueued must still wait
		// for the book goroutine to perform them, even when that goroutine
		// has not been scheduled yet.
		for i := 0; i < 32; i++ {
			engine := matching.NewEngine(setupHandler(t), true)
			engine.Start()
			engine.EnableMatching()

			require.NoError(t, engine.AddOrder(engine.NewOrder(
				symbol, matching.OrderSideBuy, matching.OrderTimeInForceGTC,
				units(100), units(1), time.Time{},
			)))
			require.NoError(t, engine.AddOrder(engine.NewOrder(
				symbol, matching.OrderSideSell, matching.OrderTimeInForceGTC,
				units(100), units(1), time.Time{},
			)))

			ob := engine.OrderBook(symbol)
			engine.Stop(false)

			require.Equal(t, 1, ob.Trades())
			require.True(t, ob.IsEmpty())
		}
	})
}
