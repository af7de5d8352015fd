// Command loadgen drives a matching engine with a randomized order flow
// and reports what happened. It is the quickest way to exercise the
// engine end to end and to eyeball throughput on a given machine.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quantgrid/tif-matching-engine/matching"
)

func main() {
	var (
		symbols     = flag.String("symbols", "BTC-USDT,ETH-USDT", "comma-separated list of symbols to trade")
		orders      = flag.Int("orders", 100_000, "amount of orders to generate")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		multithread = flag.Bool("multithread", false, "run one goroutine per order book")
		purgeEvery  = flag.Int("purge-every", 10_000, "purge expired orders every N generated orders")
		verbose     = flag.Bool("verbose", false, "log every engine event")
	)
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	symbolList := strings.Split(*symbols, ",")
	sugar.Infow("loadgen_started",
		"symbols", symbolList,
		"orders", *orders,
		"seed", *seed,
		"multithread", *multithread,
	)

	handler := newZapHandler(logger)
	engine := matching.NewEngine(handler, *multithread)
	engine.Start()
	engine.EnableMatching()

	rng := rand.New(rand.NewSource(*seed))
	started := time.Now()

	for i := 0; i < *orders; i++ {
		order := randomOrder(engine, rng, symbolList[rng.Intn(len(symbolList))])
		if err := engine.AddOrder(order); err != nil {
			sugar.Debugw("order_not_accepted", "id", order.ID(), "error", err)
		}
		if *purgeEvery > 0 && (i+1)%*purgeEvery == 0 {
			engine.PurgeExpiredOrders()
		}
	}

	engine.Stop(false)
	elapsed := time.Since(started)

	sugar.Infow("loadgen_finished",
		"elapsed", elapsed.String(),
		"orders_per_second", fmt.Sprintf("%.0f", float64(*orders)/elapsed.Seconds()),
		"orders_accepted", handler.orders.Load(),
		"orders_updated", handler.updates.Load(),
		"orders_deleted", handler.deletes.Load(),
		"orders_expired", handler.expired.Load(),
		"orders_rejected", handler.rejected.Load(),
		"trades", handler.trades.Load(),
		"errors", handler.errors.Load(),
	)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// randomOrder builds an order around a fixed mid price so that roughly
// half of the generated flow crosses the book.
func randomOrder(engine *matching.Engine, rng *rand.Rand, symbol string) matching.Order {
	side := matching.OrderSideBuy
	if rng.Intn(2) == 1 {
		side = matching.OrderSideSell
	}

	tif := matching.OrderTimeInForceGTC
	switch rng.Intn(10) {
	case 0:
		tif = matching.OrderTimeInForceIOC
	case 1:
		tif = matching.OrderTimeInForceFOK
	}

	// Mid price 100.00 with a +-5% band
	price := matching.NewUint(95_000).Add(matching.NewUint(uint64(rng.Intn(10_000)))).Mul64(matching.UintPrecision).Div64(1000)
	quantity := matching.NewUint(uint64(1 + rng.Intn(100))).Mul64(matching.UintPrecision)

	// Short random lifetime keeps the expiry purge busy
	expiry := time.Now().Add(time.Duration(1+rng.Intn(120)) * time.Second)

	return engine.NewOrder(symbol, side, tif, price, quantity, expiry)
}
