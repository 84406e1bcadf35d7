/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-core-go/internal/adapter"
	"wallet-core-go/internal/chain/evmrpc"
	"wallet-core-go/internal/common"
	"wallet-core-go/internal/config"
	"wallet-core-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	coinsFile := flag.String("coins", "", "Optional path to coins.yaml (default: COINS_FILE env or ./coins.yaml)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}
	if *coinsFile != "" {
		cfg.Sync.CoinsFile = *coinsFile
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting wallet daemon",
		zap.String("coins_file", cfg.Sync.CoinsFile),
		zap.String("database", cfg.Database.Path))

	services, err := common.InitializeServices(ctx, cfg, nil)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	services.RateCache.Start(ctx)
	services.Manager.Start()

	go adapter.WatchManager(ctx, services.Manager,
		func(a adapter.Adapter) {
			zap.L().Info("Balance changed",
				zap.String("coin", a.Coin().Code),
				zap.String("balance", a.Balance().String()))
		},
		func(a adapter.Adapter, err error) {
			zap.L().Warn("Adapter sync error",
				zap.String("coin", a.Coin().Code),
				zap.Error(err))
		})

	ratesCh, ratesCancel := services.RateCache.Subscribe()
	defer ratesCancel()
	go func() {
		for {
			select {
			case snapshot, ok := <-ratesCh:
				if !ok {
					return
				}
				zap.L().Info("Exchange rates updated", zap.Int("coins", len(snapshot)))
			case <-ctx.Done():
				return
			}
		}
	}()

	// New ethereum heads trigger an immediate re-sync instead of waiting for
	// the next polling tick.
	var headSubscriber *evmrpc.HeadSubscriber
	if cfg.Sync.EthereumWsURL != "" {
		headSubscriber = evmrpc.NewHeadSubscriber(cfg.Sync.EthereumWsURL, func(height int64) {
			zap.L().Debug("New ethereum head", zap.Int64("height", height))
			for _, a := range services.Manager.Adapters() {
				if a.Coin().Type == models.ChainEthereum {
					a.Refresh()
				}
			}
		})
		headSubscriber.Start(ctx)
	}

	zap.L().Info("Wallet daemon running",
		zap.Int("adapters", len(services.Manager.Adapters())))
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		if headSubscriber != nil {
			headSubscriber.Stop()
		}
		services.Manager.Clear()
		services.RateCache.Stop()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Wallet daemon stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
