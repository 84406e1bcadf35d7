package adapter

import (
	"errors"
	"sync"
	"testing"
	"time"

	"wallet-core-go/internal/models"

	"github.com/shopspring/decimal"
)

var errTestConnection = errors.New("connection refused")

type fakeFactory struct {
	mu      sync.Mutex
	clients map[string]*fakeChainClient
	created int
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{clients: make(map[string]*fakeChainClient)}
}

func (f *fakeFactory) NewAdapter(accountCoin models.AccountCoin) (Adapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++

	client, ok := f.clients[accountCoin.Key()]
	if !ok {
		client = &fakeChainClient{height: 1, balance: decimal.NewFromInt(1)}
		f.clients[accountCoin.Key()] = client
	}

	if accountCoin.Coin.Type == models.ChainEthereum {
		return NewEthereumAdapter(accountCoin, client, &fakeSigner{}, testEthereumAddress, time.Hour), nil
	}
	return NewBitcoinAdapter(accountCoin, client, &fakeSigner{}, testBitcoinAddress, time.Hour), nil
}

func (f *fakeFactory) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

func TestManager_SetAccountCoinsCreatesAdapters(t *testing.T) {
	factory := newFakeFactory()
	m := NewManager(factory)
	defer m.Clear()

	coins := []models.AccountCoin{
		{AccountId: "acct-1", Coin: btcCoin},
		{AccountId: "acct-1", Coin: ethCoin},
	}
	if err := m.SetAccountCoins(coins); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}

	adapters := m.Adapters()
	if len(adapters) != 2 {
		t.Fatalf("got %d adapters, want 2", len(adapters))
	}
	if adapters[0].Coin().Code != "BTC" || adapters[1].Coin().Code != "ETH" {
		t.Errorf("adapters out of configuration order: %s, %s",
			adapters[0].Coin().Code, adapters[1].Coin().Code)
	}

	if _, ok := m.Adapter(coins[1]); !ok {
		t.Error("lookup by account coin failed")
	}
}

func TestManager_ReconcileKeepsSurvivorsUntouched(t *testing.T) {
	factory := newFakeFactory()
	m := NewManager(factory)
	defer m.Clear()

	btc := models.AccountCoin{AccountId: "acct-1", Coin: btcCoin}
	eth := models.AccountCoin{AccountId: "acct-1", Coin: ethCoin}

	if err := m.SetAccountCoins([]models.AccountCoin{btc, eth}); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}
	kept, _ := m.Adapter(btc)

	if err := m.SetAccountCoins([]models.AccountCoin{btc}); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}

	if got := len(m.Adapters()); got != 1 {
		t.Fatalf("got %d adapters, want 1", got)
	}
	now, _ := m.Adapter(btc)
	if now != kept {
		t.Error("surviving adapter was recreated")
	}
	if factory.createdCount() != 2 {
		t.Errorf("factory created %d adapters, want 2", factory.createdCount())
	}
}

func TestManager_ChangedSignalFiresOnSetChange(t *testing.T) {
	factory := newFakeFactory()
	m := NewManager(factory)
	defer m.Clear()

	ch, cancel := m.ChangedSignal().Subscribe()
	defer cancel()

	btc := models.AccountCoin{AccountId: "acct-1", Coin: btcCoin}
	if err := m.SetAccountCoins([]models.AccountCoin{btc}); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("changed signal never fired")
	}

	// Reconciling to an identical set is not a change.
	if err := m.SetAccountCoins([]models.AccountCoin{btc}); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}
	select {
	case <-ch:
		t.Fatal("changed signal fired for an unchanged set")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestManager_StartLaunchesExistingAndFutureAdapters(t *testing.T) {
	factory := newFakeFactory()
	m := NewManager(factory)
	defer m.Clear()

	btc := models.AccountCoin{AccountId: "acct-1", Coin: btcCoin}
	if err := m.SetAccountCoins([]models.AccountCoin{btc}); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}

	m.Start()
	a, _ := m.Adapter(btc)
	waitForProgress(t, a, 1)

	// Coins added after Start sync without another Start call.
	eth := models.AccountCoin{AccountId: "acct-1", Coin: ethCoin}
	if err := m.SetAccountCoins([]models.AccountCoin{btc, eth}); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}
	b, _ := m.Adapter(eth)
	waitForProgress(t, b, 1)
}

func TestManager_FailingAdapterDoesNotBlockOthers(t *testing.T) {
	factory := newFakeFactory()

	btc := models.AccountCoin{AccountId: "acct-1", Coin: btcCoin}
	eth := models.AccountCoin{AccountId: "acct-1", Coin: ethCoin}
	factory.clients[btc.Key()] = &fakeChainClient{heightErr: errTestConnection}
	factory.clients[eth.Key()] = &fakeChainClient{height: 5, balance: decimal.NewFromInt(3)}

	m := NewManager(factory)
	defer m.Clear()

	if err := m.SetAccountCoins([]models.AccountCoin{btc, eth}); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}
	m.Start()

	healthy, _ := m.Adapter(eth)
	waitForProgress(t, healthy, 1)
	if !healthy.Balance().Equal(decimal.NewFromInt(3)) {
		t.Errorf("healthy adapter balance = %s, want 3", healthy.Balance())
	}

	failing, _ := m.Adapter(btc)
	if failing.SyncProgress() == 1 {
		t.Error("failing adapter reported a complete sync")
	}
}

func TestManager_ClearDrainsAllAdapters(t *testing.T) {
	factory := newFakeFactory()
	m := NewManager(factory)

	coins := []models.AccountCoin{
		{AccountId: "acct-1", Coin: btcCoin},
		{AccountId: "acct-1", Coin: ethCoin},
	}
	if err := m.SetAccountCoins(coins); err != nil {
		t.Fatalf("SetAccountCoins: %v", err)
	}
	m.Start()
	for _, a := range m.Adapters() {
		waitForProgress(t, a, 1)
	}

	adapters := m.Adapters()
	m.Clear()

	if got := len(m.Adapters()); got != 0 {
		t.Errorf("got %d adapters after Clear, want 0", got)
	}
	for _, a := range adapters {
		ch, cancel := a.BalanceSignal().Subscribe()
		a.Refresh()
		select {
		case <-ch:
			t.Error("cleared adapter still notifies")
		case <-time.After(50 * time.Millisecond):
		}
		cancel()
	}

	// Clearing twice is harmless.
	m.Clear()
}
