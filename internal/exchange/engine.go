package exchange

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/aggregator"
	"github.com/solswap-labs/exchange-core/internal/cache"
	"github.com/solswap-labs/exchange-core/internal/config"
	"github.com/solswap-labs/exchange-core/internal/lifecycle"
	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/protocols/orca"
	"github.com/solswap-labs/exchange-core/internal/protocols/raydium"
	"github.com/solswap-labs/exchange-core/internal/protocols/serum"
	"github.com/solswap-labs/exchange-core/internal/registry"
	"github.com/solswap-labs/exchange-core/internal/rpc"
	"github.com/solswap-labs/exchange-core/internal/store"
	"github.com/solswap-labs/exchange-core/internal/tokens"
	"github.com/solswap-labs/exchange-core/internal/wallet"
)

// Engine assembles the full stack from configuration: RPC client, catalogs,
// protocol clients, aggregator, session, and (when a wallet key is present)
// the executor
type Engine struct {
	Config *config.Config
	Logger *logrus.Logger

	RPC        *rpc.Client
	Tokens     *tokens.Registry
	Pools      *registry.Registry
	Aggregator *aggregator.Aggregator
	Session    *Session
	Wallet     *wallet.Wallet
	Executor   *Executor

	Cache   *cache.RedisCache
	History *store.ClickHouseStore
}

// NewEngine wires the stack. Redis and ClickHouse attach only when enabled
// in config; a missing wallet key leaves the engine quote-only.
func NewEngine(cfg *config.Config, logger *logrus.Logger) (*Engine, error) {
	if logger == nil {
		logger = logrus.New()
	}

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		ReqPerSecond: cfg.ReqPerSecond,
		Logger:       logger,
	})

	tokenReg := tokens.NewRegistry(tokens.DefaultList())
	if cfg.TokenListPath != "" {
		loaded, err := tokens.NewRegistryFromFile(cfg.TokenListPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load token list: %w", err)
		}
		tokenReg = loaded
	}

	poolReg := registry.NewDefault()
	if cfg.PoolListPath != "" {
		loaded, err := registry.NewFromFile(cfg.PoolListPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load pool catalog: %w", err)
		}
		poolReg = loaded
	}

	clients := []protocols.Client{
		orca.NewClient(poolReg, rpcClient, logger),
		raydium.NewClient(poolReg, rpcClient, logger),
		serum.NewClient(poolReg, rpcClient, logger),
	}
	agg := aggregator.New(poolReg, clients, logger)

	txFeeBaseline := tokens.FromRaw(rpc.LamportsPerSignature, tokens.SOLDecimals)
	session := NewSession(agg, txFeeBaseline, logger)
	session.SetSlippage(cfg.DefaultSlippage)

	eng := &Engine{
		Config:     cfg,
		Logger:     logger,
		RPC:        rpcClient,
		Tokens:     tokenReg,
		Pools:      poolReg,
		Aggregator: agg,
		Session:    session,
	}

	if cfg.RedisEnabled {
		c, err := cache.NewRedisCache(cfg.RedisAddr, logger)
		if err != nil {
			return nil, err
		}
		eng.Cache = c
	}
	if cfg.ClickHouseEnabled {
		h, err := store.NewClickHouseStore(cfg.ClickHouseAddr, cfg.ClickHouseDatabase, cfg.ClickHouseUsername, cfg.ClickHousePassword, logger)
		if err != nil {
			return nil, err
		}
		eng.History = h
	}

	if cfg.WalletPrivateKey != "" {
		w, err := wallet.New(cfg.WalletPrivateKey, rpcClient)
		if err != nil {
			return nil, err
		}
		eng.Wallet = w

		feeOwner := w.PublicKey()
		if cfg.FeeOwner != "" {
			parsed, err := solana.PublicKeyFromBase58(cfg.FeeOwner)
			if err != nil {
				return nil, fmt.Errorf("invalid fee owner: %w", err)
			}
			feeOwner = parsed
		}

		orch := lifecycle.New(w, rpcClient, logger)
		orch.SetConfirmTimeout(cfg.ConfirmTimeout, cfg.PollInterval)

		var exCache store.ExchangeCache
		if eng.Cache != nil {
			exCache = eng.Cache
		}
		var exStore store.ExchangeStore
		if eng.History != nil {
			exStore = eng.History
		}
		eng.Executor = NewExecutor(session, rpcClient, w, orch, exCache, exStore, feeOwner, logger)
	}

	return eng, nil
}

// TxFeeBaseline returns the network-fee floor used for fee computation
func (e *Engine) TxFeeBaseline() decimal.Decimal {
	return tokens.FromRaw(rpc.LamportsPerSignature, tokens.SOLDecimals)
}

// Close releases the engine's external connections
func (e *Engine) Close() {
	e.Session.Close()
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
	if e.History != nil {
		_ = e.History.Close()
	}
}
