package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"wallet-core-go/internal/adapter"
	"wallet-core-go/internal/chain"
	"wallet-core-go/internal/chain/esplora"
	"wallet-core-go/internal/chain/evmrpc"
	"wallet-core-go/internal/core"
	"wallet-core-go/internal/models"
	"wallet-core-go/internal/rates"
	"wallet-core-go/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Storage   *storage.Service
	RateCache *rates.Cache
	Manager   *adapter.Manager
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires storage, the exchange-rate cache and the adapter
// manager from configuration. A nil signer yields a watch-only wallet where
// every send completes with an error.
func InitializeServices(ctx context.Context, cfg *models.Config, signer core.TransactionSigner) (*Services, error) {
	storageService, err := storage.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	entries, err := LoadCoinConfig(cfg.Sync.CoinsFile)
	if err != nil {
		storageService.Close()
		return nil, err
	}
	if len(entries) == 0 {
		storageService.Close()
		return nil, fmt.Errorf("no coins configured in %s", cfg.Sync.CoinsFile)
	}

	coins := make([]models.Coin, len(entries))
	for i, entry := range entries {
		coins[i] = entry.AccountCoin.Coin
	}

	// A base currency stored from a previous run wins over the configured one.
	baseCurrencyCode := cfg.Rates.BaseCurrency
	if stored, err := storageService.BaseCurrency(); err == nil && stored != "" {
		baseCurrencyCode = stored
	}

	lookupClient, err := rates.NewHttpLookupClient(cfg.Rates.ApiURL)
	if err != nil {
		storageService.Close()
		return nil, err
	}
	rateCache := rates.NewCache(lookupClient, coins, CurrencyFor(baseCurrencyCode), cfg.Rates)

	if signer == nil {
		signer = watchOnlySigner{}
	}

	factory, err := newAdapterFactory(cfg.Sync, entries, signer)
	if err != nil {
		storageService.Close()
		return nil, err
	}

	manager := adapter.NewManager(factory)
	accountCoins := make([]models.AccountCoin, len(entries))
	for i, entry := range entries {
		accountCoins[i] = entry.AccountCoin
	}
	if err := manager.SetAccountCoins(accountCoins); err != nil {
		storageService.Close()
		return nil, err
	}

	zap.L().Info("Services initialized",
		zap.Int("coins", len(coins)),
		zap.String("base_currency", baseCurrencyCode))

	return &Services{
		Storage:   storageService,
		RateCache: rateCache,
		Manager:   manager,
	}, nil
}

func (cs *Services) Close() {
	if cs.Manager != nil {
		cs.Manager.Clear()
	}
	if cs.RateCache != nil {
		cs.RateCache.Stop()
	}
	if cs.Storage != nil {
		cs.Storage.Close()
	}
}

// newAdapterFactory builds one chain client per family and hands out
// adapters bound to them.
func newAdapterFactory(cfg models.SyncConfig, entries []CoinEntry, signer core.TransactionSigner) (adapter.Factory, error) {
	addresses := make(map[string]string, len(entries))
	needsBitcoin := false
	needsEthereum := false
	for _, entry := range entries {
		addresses[entry.AccountCoin.Key()] = entry.Address
		switch entry.AccountCoin.Coin.Type {
		case models.ChainBitcoin:
			needsBitcoin = true
		case models.ChainEthereum:
			needsEthereum = true
		}
	}

	var bitcoinClient, ethereumClient chain.Client
	if needsBitcoin {
		client, err := esplora.NewClient(cfg.BitcoinApiURL)
		if err != nil {
			return nil, err
		}
		bitcoinClient = client
	}
	if needsEthereum {
		client, err := evmrpc.NewClient(cfg.EthereumRpcURL, cfg.EthereumIndexURL)
		if err != nil {
			return nil, err
		}
		ethereumClient = client
	}

	return adapter.FactoryFunc(func(accountCoin models.AccountCoin) (adapter.Adapter, error) {
		address, ok := addresses[accountCoin.Key()]
		if !ok {
			return nil, fmt.Errorf("no address configured for %s", accountCoin.Coin.Code)
		}

		switch accountCoin.Coin.Type {
		case models.ChainBitcoin:
			return adapter.NewBitcoinAdapter(accountCoin, bitcoinClient, signer, address, cfg.RefreshInterval), nil
		case models.ChainEthereum:
			return adapter.NewEthereumAdapter(accountCoin, ethereumClient, signer, address, cfg.RefreshInterval), nil
		default:
			return nil, fmt.Errorf("unsupported chain type %q", accountCoin.Coin.Type)
		}
	}), nil
}

type watchOnlySigner struct{}

func (watchOnlySigner) SignTransfer(_ context.Context, coin models.Coin, _ string, _, _ string) ([]byte, error) {
	return nil, fmt.Errorf("no signing material available for %s (watch-only wallet)", coin.Code)
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
