package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"btcbridge/core/config"
	"btcbridge/core/internal/clients"
	"btcbridge/core/internal/constants"
	"btcbridge/core/internal/services"
	"btcbridge/core/internal/stores"
	"btcbridge/core/internal/utils/address"
	"btcbridge/core/internal/utils/format"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; it can point at an alternate config file.
	_ = godotenv.Load()

	configPath := os.Getenv("BRIDGE_CONFIG")
	if configPath == "" {
		configPath = constants.DefaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", configPath, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	admin, err := address.Parse(cfg.Bridge.AdminAddress)
	if err != nil {
		log.Fatalf("invalid admin address: %v", err)
	}
	bridgeAddr, err := address.Parse(cfg.Bridge.BridgeAddress)
	if err != nil {
		log.Fatalf("invalid bridge address: %v", err)
	}

	if err := os.MkdirAll(cfg.Bridge.DataDir, 0700); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}
	ledger, err := stores.NewLocalLedger(filepath.Join(cfg.Bridge.DataDir, constants.DefaultLedgerFile))
	if err != nil {
		log.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()
	logger.Info("ledger open", "dir", cfg.Bridge.DataDir)

	bridge := services.NewBridge(logger, ledger, format.AddressRules{
		Admin:  admin,
		Bridge: bridgeAddr,
	})
	if cfg.Token.Url != "" {
		bridge.AttachToken(clients.NewTokenClient(cfg.Token.Url))
		logger.Info("token backend attached", "url", cfg.Token.Url)
	}

	api := services.NewApi(logger, bridge, cfg.Api.ListenAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigch
		logger.Info("stopping")
		cancel()
	}()

	go func() {
		logger.Info("API listening", "addr", cfg.Api.ListenAddr, "admin", admin.Hex())
		if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	if err := api.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
