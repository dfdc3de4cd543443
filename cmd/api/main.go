package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awesomegic/gicbank/internal/config"
	"github.com/awesomegic/gicbank/internal/infra"
	"github.com/awesomegic/gicbank/internal/logging"
	"github.com/awesomegic/gicbank/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	backends, err := infra.Open(connectCtx, cfg, logger)
	cancelConnect()
	if err != nil {
		logger.Error("connect backends", "error", err)
		os.Exit(1)
	}
	defer backends.Close(logger)

	srv, err := server.New(cfg, backends, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		backends.Close(logger)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()
	logger.Info("listening", "addr", cfg.Address(), "env", cfg.AppEnv)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			backends.Close(logger)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return
	}

	logger.Info("server exited cleanly")
}
