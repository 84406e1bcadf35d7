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

package rates

import (
	"context"
	"sync"
	"time"

	"wallet-core-go/internal/models"
	"wallet-core-go/internal/pubsub"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cache decouples "what rate do we show right now" (fast, cached) from
// "fetch me the rate" (slow, networked). The latest snapshot is continuously
// refreshed in the background; historical bucket lookups bypass the snapshot
// and are cached for the process lifetime, since a bucket's rate never
// changes once recorded.
type Cache struct {
	client LookupClient
	coins  []models.Coin

	mu           sync.RWMutex
	latest       map[models.Coin]models.CurrencyValue
	baseCurrency models.Currency

	histMu     sync.Mutex
	historical map[string]decimal.Decimal

	stream *pubsub.Stream[map[models.Coin]models.CurrencyValue]

	refreshInterval time.Duration
	recencyWindow   time.Duration
	hourWindow      time.Duration

	now func() time.Time

	refreshChan chan struct{}
	stopChan    chan struct{}
	doneChan    chan struct{}
}

func NewCache(client LookupClient, coins []models.Coin, baseCurrency models.Currency, cfg models.RatesConfig) *Cache {
	return &Cache{
		client:          client,
		coins:           coins,
		latest:          make(map[models.Coin]models.CurrencyValue),
		baseCurrency:    baseCurrency,
		historical:      make(map[string]decimal.Decimal),
		stream:          pubsub.NewStream[map[models.Coin]models.CurrencyValue](),
		refreshInterval: cfg.RefreshInterval,
		recencyWindow:   cfg.RecencyWindow,
		hourWindow:      cfg.HourWindow,
		now:             func() time.Time { return time.Now().UTC() },
		refreshChan:     make(chan struct{}, 1),
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start begins the background refresh loop.
func (c *Cache) Start(ctx context.Context) {
	zap.L().Info("Starting exchange rate cache",
		zap.Int("coins", len(c.coins)),
		zap.String("base_currency", c.baseCurrency.Code),
		zap.Duration("refresh_interval", c.refreshInterval))

	go c.refreshLoop(ctx)
}

// Stop terminates the refresh loop and waits for it to drain.
func (c *Cache) Stop() {
	close(c.stopChan)
	<-c.doneChan
	zap.L().Info("Exchange rate cache stopped")
}

func (c *Cache) refreshLoop(ctx context.Context) {
	defer close(c.doneChan)

	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	c.refreshAll(ctx)

	for {
		select {
		case <-ticker.C:
			c.refreshAll(ctx)
		case <-c.refreshChan:
			c.refreshAll(ctx)
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// ExchangeRates returns the current best-known snapshot for every tracked
// coin. It never blocks; coins without a completed fetch report a zero value
// in the base currency.
func (c *Cache) ExchangeRates() map[models.Coin]models.CurrencyValue {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[models.Coin]models.CurrencyValue, len(c.coins))
	for _, coin := range c.coins {
		if value, ok := c.latest[coin]; ok {
			snapshot[coin] = value
		} else {
			snapshot[coin] = models.CurrencyValue{Currency: c.baseCurrency, Value: decimal.Zero}
		}
	}
	return snapshot
}

// Subscribe emits the full updated mapping every time any tracked coin's
// latest rate changes. Delivery coalesces: a slow consumer only ever sees the
// freshest mapping.
func (c *Cache) Subscribe() (<-chan map[models.Coin]models.CurrencyValue, func()) {
	return c.stream.Subscribe()
}

// BaseCurrency returns the active display currency.
func (c *Cache) BaseCurrency() models.Currency {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseCurrency
}

// SetBaseCurrency switches the display fiat. The latest in-memory snapshot is
// invalidated (historical entries are not) and a fresh fetch is triggered for
// all tracked coins against the new currency.
func (c *Cache) SetBaseCurrency(currency models.Currency) {
	c.mu.Lock()
	if c.baseCurrency.Code == currency.Code {
		c.mu.Unlock()
		return
	}
	c.baseCurrency = currency
	c.latest = make(map[models.Coin]models.CurrencyValue)
	c.mu.Unlock()

	zap.L().Info("Base currency changed", zap.String("currency", currency.Code))

	select {
	case c.refreshChan <- struct{}{}:
	default:
	}
}

// Rate resolves timestamp to a minute, hour or day bucket and returns that
// bucket's rate, fetching it at most once. Repeated calls for the same bucket
// return the identical cached value without touching the network.
func (c *Cache) Rate(ctx context.Context, coinCode, currencyCode string, timestamp time.Time) (decimal.Decimal, error) {
	bucket := resolveBucket(timestamp, c.now(), c.recencyWindow, c.hourWindow)
	key := bucket.Key(coinCode, currencyCode)

	c.histMu.Lock()
	if rate, ok := c.historical[key]; ok {
		c.histMu.Unlock()
		return rate, nil
	}
	c.histMu.Unlock()

	rate, err := c.fetchBucket(ctx, coinCode, currencyCode, bucket)
	if err != nil {
		return decimal.Zero, err
	}

	c.histMu.Lock()
	c.historical[key] = rate
	c.histMu.Unlock()

	return rate, nil
}

func (c *Cache) fetchBucket(ctx context.Context, coinCode, currencyCode string, bucket Bucket) (decimal.Decimal, error) {
	t := bucket.Time
	switch bucket.Kind {
	case BucketMinute:
		return c.client.RateAt(ctx, coinCode, currencyCode, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
	case BucketHour:
		return c.client.RateAt(ctx, coinCode, currencyCode, t.Year(), int(t.Month()), t.Day(), t.Hour(), 0)
	default:
		return c.client.RateByDay(ctx, coinCode, currencyCode, t.Year(), int(t.Month()), t.Day())
	}
}

// Currencies lists the fiat currencies the rate source supports.
func (c *Cache) Currencies(ctx context.Context) ([]models.Currency, error) {
	return c.client.Currencies(ctx)
}

// refreshAll fetches the latest rate for every tracked coin concurrently.
// A failed fetch leaves the existing snapshot entry unchanged: stale-but-
// present data is preferred over blanking the display.
func (c *Cache) refreshAll(ctx context.Context) {
	c.mu.RLock()
	base := c.baseCurrency
	c.mu.RUnlock()

	type result struct {
		coin models.Coin
		rate decimal.Decimal
	}

	results := make(chan result, len(c.coins))
	var wg sync.WaitGroup

	for _, coin := range c.coins {
		wg.Add(1)
		go func(coin models.Coin) {
			defer wg.Done()

			rate, err := c.client.LatestRate(ctx, coin.Code, base.Code)
			if err != nil {
				zap.L().Warn("Failed to fetch latest rate",
					zap.String("coin", coin.Code),
					zap.String("currency", base.Code),
					zap.Error(err))
				return
			}
			results <- result{coin: coin, rate: rate}
		}(coin)
	}

	wg.Wait()
	close(results)

	changed := false
	c.mu.Lock()
	if c.baseCurrency.Code != base.Code {
		// Base currency switched while fetching; these rates are stale.
		c.mu.Unlock()
		return
	}
	for r := range results {
		value := models.CurrencyValue{Currency: base, Value: r.rate}
		if existing, ok := c.latest[r.coin]; !ok || !existing.Value.Equal(r.rate) || existing.Currency != base {
			c.latest[r.coin] = value
			changed = true
		}
	}
	c.mu.Unlock()

	if changed {
		c.stream.Publish(c.ExchangeRates())
	}
}
