package common

import (
	"fmt"
	"os"
	"path/filepath"

	"wallet-core-go/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"
)

type CoinConfig struct {
	Code     string `yaml:"code"`
	Title    string `yaml:"title"`
	Decimals int    `yaml:"decimals"`
	Type     string `yaml:"type"`
	Address  string `yaml:"address"`
}

type CoinsConfig struct {
	AccountId string       `yaml:"account_id"`
	Coins     []CoinConfig `yaml:"coins"`
}

// CoinEntry is one enabled coin resolved from coins.yaml: the account coin
// plus the watch address the adapter syncs against.
type CoinEntry struct {
	AccountCoin models.AccountCoin
	Address     string
}

// LoadCoinConfig reads coins.yaml. A missing account_id gets a generated one,
// so a fresh config file still yields a stable in-process wallet account.
func LoadCoinConfig(coinsFile string) ([]CoinEntry, error) {
	var coinsPath string
	if filepath.IsAbs(coinsFile) {
		coinsPath = coinsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		coinsPath = filepath.Join(wd, coinsFile)
	}

	data, err := os.ReadFile(coinsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", coinsFile, err)
	}

	var config CoinsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", coinsFile, err)
	}

	accountId := config.AccountId
	if accountId == "" {
		accountId = uuid.New().String()
	}

	entries := make([]CoinEntry, 0, len(config.Coins))
	for i, coin := range config.Coins {
		if coin.Code == "" {
			return nil, fmt.Errorf("coin at index %d missing code", i)
		}
		if coin.Address == "" {
			return nil, fmt.Errorf("coin %s missing address", coin.Code)
		}
		if coin.Decimals <= 0 {
			return nil, fmt.Errorf("coin %s has invalid decimals %d", coin.Code, coin.Decimals)
		}

		chainType, err := parseChainType(coin.Type)
		if err != nil {
			return nil, fmt.Errorf("coin %s: %w", coin.Code, err)
		}

		entries = append(entries, CoinEntry{
			AccountCoin: models.AccountCoin{
				AccountId: accountId,
				Coin: models.Coin{
					Code:     coin.Code,
					Title:    coin.Title,
					Decimals: coin.Decimals,
					Type:     chainType,
				},
			},
			Address: coin.Address,
		})
	}

	return entries, nil
}

func parseChainType(s string) (models.ChainType, error) {
	switch s {
	case "bitcoin":
		return models.ChainBitcoin, nil
	case "ethereum":
		return models.ChainEthereum, nil
	default:
		return "", fmt.Errorf("unknown chain type %q", s)
	}
}

var knownCurrencies = map[string]models.Currency{
	"USD": {Code: "USD", Symbol: "$", Decimals: 2},
	"EUR": {Code: "EUR", Symbol: "€", Decimals: 2},
	"GBP": {Code: "GBP", Symbol: "£", Decimals: 2},
	"JPY": {Code: "JPY", Symbol: "¥", Decimals: 0},
}

// CurrencyFor resolves a fiat currency code, falling back to a symbol-less
// currency for codes outside the known set.
func CurrencyFor(code string) models.Currency {
	if currency, ok := knownCurrencies[code]; ok {
		return currency
	}
	return models.Currency{Code: code, Symbol: code + " ", Decimals: 2}
}
