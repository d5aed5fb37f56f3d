package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/config"
	"github.com/solswap-labs/exchange-core/internal/exchange"
	"github.com/solswap-labs/exchange-core/internal/fees"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

func main() {
	mode := flag.String("mode", "quote", "quote | swap | wrap | unwrap | dca")
	inTok := flag.String("in", "SOL", "input token symbol (e.g. SOL)")
	outTok := flag.String("out", "USDC", "output token symbol (e.g. USDC)")
	amt := flag.Float64("amt", 0, "amount in human units (e.g. 0.1)")
	slippage := flag.Float64("slippage", 0.5, "slippage tolerance in percent")
	interval := flag.Duration("interval", time.Hour, "dca: interval between runs")
	runs := flag.Int("runs", 0, "dca: number of runs (0 = until interrupted)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	eng, err := exchange.NewEngine(cfg, logger)
	if err != nil {
		fmt.Println("failed to init engine:", err)
		os.Exit(1)
	}
	defer eng.Close()

	from, err := eng.Tokens.BySymbol(*inTok)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	to, err := eng.Tokens.BySymbol(*outTok)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	if *mode != "unwrap" && *amt <= 0 {
		fmt.Println("missing -amt (must be > 0)")
		os.Exit(2)
	}

	eng.Session.SetSlippage(*slippage)
	eng.Session.SetPair(from, to)
	eng.Session.SetAmountNow(decimal.NewFromFloat(*amt))

	switch *mode {
	case "quote":
		runQuote(ctx, eng, from)
	case "swap", "wrap", "unwrap":
		runExecute(ctx, eng, *mode)
	case "dca":
		runDCA(ctx, eng, exchange.Schedule{
			From:     from,
			To:       to,
			Amount:   decimal.NewFromFloat(*amt),
			Interval: *interval,
			MaxRuns:  *runs,
		})
	default:
		fmt.Println("invalid -mode (use quote|swap|wrap|unwrap|dca)")
		os.Exit(2)
	}
}

func runQuote(ctx context.Context, eng *exchange.Engine, from tokens.TokenInfo) {
	info, err := eng.Session.RecomputeQuote(ctx)
	if err != nil {
		fmt.Println("quote failed:", err)
		os.Exit(1)
	}

	feesInfo := fees.Compute(info, eng.TxFeeBaseline(), info.AmountIn, from.Decimals, false)
	fmt.Printf("venue=%s amount_in=%s amount_out=%s min_out=%s out_price=%s price_impact=%.4f\n",
		info.FromAmm, info.AmountIn, info.AmountOut, info.MinAmountOut, info.OutPrice, info.PriceImpact)
	fmt.Printf("fees: aggregator=%s protocol=%s network=%s total=%s\n",
		feesInfo.Aggregator, feesInfo.Protocol, feesInfo.Network, feesInfo.Total)
}

func runExecute(ctx context.Context, eng *exchange.Engine, mode string) {
	if eng.Executor == nil {
		fmt.Println("no wallet configured (set WALLET_PRIVATE_KEY)")
		os.Exit(2)
	}

	var err error
	switch mode {
	case "swap":
		_, err = eng.Executor.Swap(ctx)
	case "wrap":
		_, err = eng.Executor.Wrap(ctx, eng.Session.Amount())
	case "unwrap":
		_, err = eng.Executor.Unwrap(ctx)
	}
	if err != nil {
		fmt.Println(mode, "failed:", err)
		for _, entry := range eng.Executor.Orchestrator().Transcript() {
			fmt.Printf("  %s: %s\n", entry.Action, entry.Result)
		}
		os.Exit(1)
	}

	fmt.Printf("status=%s signature=%s\n",
		eng.Executor.Orchestrator().Status(), eng.Executor.Orchestrator().Signature())
}

func runDCA(ctx context.Context, eng *exchange.Engine, sched exchange.Schedule) {
	if eng.Executor == nil {
		fmt.Println("no wallet configured (set WALLET_PRIVATE_KEY)")
		os.Exit(2)
	}

	scheduler := exchange.NewScheduler(eng.Executor, eng.Session, eng.Logger)
	scheduler.Start(ctx, sched)
	<-ctx.Done()
	scheduler.Stop()
	fmt.Printf("dca stopped after %d runs\n", scheduler.Runs())
}
