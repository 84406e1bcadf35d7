package adapter

import (
	"context"
	"testing"
	"time"

	"wallet-core-go/internal/models"

	"github.com/shopspring/decimal"
)

func waitForWatchEvent(t *testing.T, ch <-chan string, want string, kick func()) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		kick()
		select {
		case code := <-ch:
			if code == want {
				return
			}
		case <-time.After(50 * time.Millisecond):
		}
	}
	t.Fatalf("never observed a %s notification", want)
}

func TestWatchManager_PicksUpAdaptersAddedLater(t *testing.T) {
	factory := newFakeFactory()
	m := NewManager(factory)
	defer m.Clear()

	btc := models.AccountCoin{AccountId: "acct-1", Coin: btcCoin}
	eth := models.AccountCoin{AccountId: "acct-1", Coin: ethCoin}

	// The later adapter keeps failing so every refresh republishes a sync
	// error for the watcher to observe.
	factory.clients[eth.Key()] = &fakeChainClient{height: 1, balanceErr: errTestConnection}

	balanceCh := make(chan string, 16)
	errorCh := make(chan string, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go WatchManager(ctx, m,
		func(a Adapter) { balanceCh <- a.Coin().Code },
		func(a Adapter, err error) { errorCh <- a.Coin().Code })

	if err := m.SetAccountCoins([]models.AccountCoin{btc}); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}
	m.Start()

	btcAdapter, ok := m.Adapter(btc)
	if !ok {
		t.Fatal("bitcoin adapter missing")
	}
	btcClient := factory.clients[btc.Key()]
	next := int64(2)
	waitForWatchEvent(t, balanceCh, "BTC", func() {
		btcClient.mu.Lock()
		btcClient.balance = decimal.NewFromInt(next)
		btcClient.mu.Unlock()
		next++
		btcAdapter.Refresh()
	})

	if err := m.SetAccountCoins([]models.AccountCoin{btc, eth}); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}
	ethAdapter, ok := m.Adapter(eth)
	if !ok {
		t.Fatal("ethereum adapter missing")
	}
	waitForWatchEvent(t, errorCh, "ETH", func() { ethAdapter.Refresh() })
}
