package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/solswap-labs/exchange-core/internal/config"
	"github.com/solswap-labs/exchange-core/internal/exchange"
	"github.com/solswap-labs/exchange-core/internal/server"
	"github.com/solswap-labs/exchange-core/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	eng, err := exchange.NewEngine(cfg, logger)
	if err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Fatal("failed to init engine")
	}
	defer eng.Close()

	var exCache store.ExchangeCache
	if eng.Cache != nil {
		exCache = eng.Cache
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: &server.Handlers{
			Aggregator:    eng.Aggregator,
			Tokens:        eng.Tokens,
			Pools:         eng.Pools,
			Cache:         exCache,
			TxFeeBaseline: eng.TxFeeBaseline(),
			Logger:        logger,
		},
		Config: server.ServerConfig{Addr: cfg.ListenAddr},
	})
	if err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Fatal("failed to init server")
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.ListenAddr}).Info("api listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"error": err}).Fatal("server stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Error("shutdown failed")
	}
	_ = srv.WaitClosed(context.Background())
}
