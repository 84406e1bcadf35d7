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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"wallet-core-go/internal/models"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	ratesRefreshInterval, err := getEnvDuration("RATES_REFRESH_INTERVAL", 3*time.Minute)
	if err != nil {
		return nil, err
	}

	ratesRecencyWindow, err := getEnvDuration("RATES_RECENCY_WINDOW", time.Hour)
	if err != nil {
		return nil, err
	}

	ratesHourWindow, err := getEnvDuration("RATES_HOUR_WINDOW", 72*time.Hour)
	if err != nil {
		return nil, err
	}

	syncRefreshInterval, err := getEnvDuration("SYNC_REFRESH_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "wallet.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Rates: models.RatesConfig{
			ApiURL:          getEnvString("RATES_API_URL", "https://rates.example.com"),
			RefreshInterval: ratesRefreshInterval,
			RecencyWindow:   ratesRecencyWindow,
			HourWindow:      ratesHourWindow,
			BaseCurrency:    getEnvString("BASE_CURRENCY", "USD"),
		},
		Sync: models.SyncConfig{
			RefreshInterval:  syncRefreshInterval,
			CoinsFile:        getEnvString("COINS_FILE", "coins.yaml"),
			BitcoinApiURL:    getEnvString("BITCOIN_API_URL", "https://blockstream.info/api"),
			EthereumRpcURL:   getEnvString("ETHEREUM_RPC_URL", "https://cloudflare-eth.com"),
			EthereumIndexURL: getEnvString("ETHEREUM_INDEX_URL", ""),
			EthereumWsURL:    getEnvString("ETHEREUM_WS_URL", ""),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
