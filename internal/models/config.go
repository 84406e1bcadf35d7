package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Rates    RatesConfig
	Sync     SyncConfig
}

// DatabaseConfig holds local storage connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// RatesConfig holds exchange-rate cache settings
type RatesConfig struct {
	ApiURL          string
	RefreshInterval time.Duration
	RecencyWindow   time.Duration // timestamps younger than this resolve to minute buckets
	HourWindow      time.Duration // timestamps younger than this resolve to hour buckets
	BaseCurrency    string
}

// SyncConfig holds adapter sync settings
type SyncConfig struct {
	RefreshInterval  time.Duration
	CoinsFile        string
	BitcoinApiURL    string
	EthereumRpcURL   string
	EthereumIndexURL string
	EthereumWsURL    string
}
