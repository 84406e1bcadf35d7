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
	"fmt"
	"time"

	"wallet-core-go/internal/adapter"
	"wallet-core-go/internal/common"
	"wallet-core-go/internal/config"
	"wallet-core-go/internal/format"
	"wallet-core-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalCoins  int
	syncedCoins int
	failedCoins int
}

func waitForSync(a adapter.Adapter, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if a.SyncProgress() == 1 {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}

func printCoinBalance(a adapter.Adapter, rate models.CurrencyValue, formatter *format.NumberFormatter, isLast bool) {
	prefix := common.BoxPrefix(isLast)
	coin := a.Coin()
	balance := a.Balance()

	coinAmount := formatter.FormatCoinFull(balance, coin.Code, coin.Decimals)

	fiat := "rate unavailable"
	if !rate.Value.IsZero() {
		fiat = formatter.FormatFiatShort(balance.Mul(rate.Value), rate.Currency.Symbol, rate.Currency.Decimals)
	}

	fmt.Printf("%s %-6s %28s  (%s)\n", prefix, coin.Code, coinAmount, fiat)
	fmt.Printf("%s        address: %s\n", common.BoxDetailPrefix(isLast), a.ReceiveAddress())
}

func main() {
	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	currencyFlag := flag.String("currency", "", "Override the base fiat currency (optional)")
	syncTimeout := flag.Duration("timeout", 30*time.Second, "Max time to wait for each coin to sync")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if *currencyFlag != "" {
		cfg.Rates.BaseCurrency = *currencyFlag
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg, nil)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	services.RateCache.Start(ctx)
	services.Manager.Start()

	adapters := services.Manager.Adapters()
	stats := balanceStats{totalCoins: len(adapters)}
	for _, a := range adapters {
		if waitForSync(a, *syncTimeout) {
			stats.syncedCoins++
		} else {
			stats.failedCoins++
			logger.Warn("Coin did not finish syncing",
				zap.String("coin", a.Coin().Code),
				zap.Float64("progress", a.SyncProgress()))
		}
	}

	rateSnapshot := services.RateCache.ExchangeRates()
	languageManager := common.NewLanguageManager(services.Storage)
	formatter := format.NewNumberFormatter(languageManager)

	common.PrintHeader("WALLET BALANCE REPORT", common.DefaultWidth)
	for i, a := range adapters {
		printCoinBalance(a, rateSnapshot[a.Coin()], formatter, i == len(adapters)-1)
	}

	summary := fmt.Sprintf("SUMMARY: %d coins (%d synced, %d incomplete)",
		stats.totalCoins, stats.syncedCoins, stats.failedCoins)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("coins", stats.totalCoins),
		zap.Int("synced", stats.syncedCoins),
		zap.Int("incomplete", stats.failedCoins))
}
