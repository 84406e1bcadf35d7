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

package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wallet-core-go/internal/chain"
	"wallet-core-go/internal/core"
	"wallet-core-go/internal/models"
	"wallet-core-go/internal/pubsub"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// coinAdapter carries the chain-agnostic adapter machinery: snapshot state,
// the background sync worker and the send pipeline. Chain families plug in
// their address validation and fee model.
type coinAdapter struct {
	id          string
	accountCoin models.AccountCoin
	client      chain.Client
	signer      core.TransactionSigner

	receiveAddress  string
	refreshInterval time.Duration

	validateFn func(address string) bool
	feeFn      func(feeRate, value decimal.Decimal) decimal.Decimal

	mu                sync.RWMutex
	balance           decimal.Decimal
	latestBlockHeight int64
	records           []models.TransactionRecord
	progress          float64
	feeRate           decimal.Decimal

	balanceSignal  *pubsub.Signal
	heightSignal   *pubsub.Signal
	txSignal       *pubsub.Signal
	progressStream *pubsub.Stream[float64]
	errorStream    *pubsub.Stream[error]

	lifecycleMu sync.Mutex
	started     bool
	cleared     bool
	cancel      context.CancelFunc
	ctx         context.Context
	refreshChan chan struct{}
	stopChan    chan struct{}
	doneChan    chan struct{}
}

func newCoinAdapter(accountCoin models.AccountCoin, client chain.Client, signer core.TransactionSigner, receiveAddress string, refreshInterval time.Duration) *coinAdapter {
	return &coinAdapter{
		id:              accountCoin.Key(),
		accountCoin:     accountCoin,
		client:          client,
		signer:          signer,
		receiveAddress:  receiveAddress,
		refreshInterval: refreshInterval,
		balance:         decimal.Zero,
		balanceSignal:   pubsub.NewSignal(),
		heightSignal:    pubsub.NewSignal(),
		txSignal:        pubsub.NewSignal(),
		progressStream:  pubsub.NewStream[float64](),
		errorStream:     pubsub.NewStream[error](),
		refreshChan:     make(chan struct{}, 1),
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

func (a *coinAdapter) Id() string        { return a.id }
func (a *coinAdapter) Coin() models.Coin { return a.accountCoin.Coin }

func (a *coinAdapter) Balance() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance
}

func (a *coinAdapter) LatestBlockHeight() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latestBlockHeight
}

func (a *coinAdapter) TransactionRecords() []models.TransactionRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	records := make([]models.TransactionRecord, len(a.records))
	copy(records, a.records)
	return records
}

func (a *coinAdapter) SyncProgress() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.progress
}

func (a *coinAdapter) ReceiveAddress() string { return a.receiveAddress }

func (a *coinAdapter) BalanceSignal() *pubsub.Signal           { return a.balanceSignal }
func (a *coinAdapter) HeightSignal() *pubsub.Signal            { return a.heightSignal }
func (a *coinAdapter) TransactionsSignal() *pubsub.Signal      { return a.txSignal }
func (a *coinAdapter) ProgressStream() *pubsub.Stream[float64] { return a.progressStream }
func (a *coinAdapter) SyncErrorStream() *pubsub.Stream[error]  { return a.errorStream }

// Start launches the background sync worker. Starting an already-started
// adapter is a no-op.
func (a *coinAdapter) Start() {
	a.lifecycleMu.Lock()
	defer a.lifecycleMu.Unlock()

	if a.started || a.cleared {
		return
	}
	a.started = true
	a.ctx, a.cancel = context.WithCancel(context.Background())

	zap.L().Info("Starting adapter",
		zap.String("id", a.id),
		zap.String("coin", a.accountCoin.Coin.Code))

	go a.syncLoop(a.ctx)
}

// Refresh signals the worker to re-sync. It never blocks; requests coalesce.
func (a *coinAdapter) Refresh() {
	select {
	case a.refreshChan <- struct{}{}:
	default:
	}
}

// Clear cancels any outstanding sync, waits for the worker to drain and
// closes all notification channels. No signal is emitted after Clear returns.
func (a *coinAdapter) Clear() {
	a.lifecycleMu.Lock()
	if a.cleared {
		a.lifecycleMu.Unlock()
		return
	}
	a.cleared = true
	wasStarted := a.started
	a.lifecycleMu.Unlock()

	if wasStarted {
		a.cancel()
		close(a.stopChan)
		<-a.doneChan
	}

	a.balanceSignal.Close()
	a.heightSignal.Close()
	a.txSignal.Close()
	a.progressStream.Close()
	a.errorStream.Close()

	zap.L().Info("Adapter cleared", zap.String("id", a.id))
}

func (a *coinAdapter) syncLoop(ctx context.Context) {
	defer close(a.doneChan)

	ticker := time.NewTicker(a.refreshInterval)
	defer ticker.Stop()

	a.sync(ctx)

	for {
		select {
		case <-ticker.C:
			a.sync(ctx)
		case <-a.refreshChan:
			a.sync(ctx)
		case <-a.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sync pulls height, fee rate, balance and transaction history from the
// chain source, updating each snapshot field and firing its signal as it
// lands. Balance and transaction list are not updated atomically together.
func (a *coinAdapter) sync(ctx context.Context) {
	a.setProgress(ctx, 0)

	height, err := a.client.LatestBlockHeight(ctx)
	if err != nil {
		a.reportSyncError(ctx, fmt.Errorf("fetch block height: %w", err))
		return
	}
	a.updateHeight(ctx, height)
	a.setProgress(ctx, 0.25)

	// Fee rate is best-effort; stale knowledge beats no knowledge.
	if feeRate, err := a.client.FeeRate(ctx); err == nil {
		a.mu.Lock()
		a.feeRate = feeRate
		a.mu.Unlock()
	}

	balance, err := a.client.Balance(ctx, a.receiveAddress)
	if err != nil {
		a.reportSyncError(ctx, fmt.Errorf("fetch balance: %w", err))
		return
	}
	a.updateBalance(ctx, balance)
	a.setProgress(ctx, 0.6)

	txs, err := a.client.Transactions(ctx, a.receiveAddress, 0)
	if err != nil {
		a.reportSyncError(ctx, fmt.Errorf("fetch transactions: %w", err))
		return
	}
	a.updateRecords(ctx, txs)
	a.setProgress(ctx, 1)
}

func (a *coinAdapter) reportSyncError(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	zap.L().Warn("Adapter sync failed",
		zap.String("id", a.id),
		zap.String("coin", a.accountCoin.Coin.Code),
		zap.Error(err))
	a.errorStream.Publish(&core.SyncError{CoinCode: a.accountCoin.Coin.Code, Err: err})
}

func (a *coinAdapter) setProgress(ctx context.Context, p float64) {
	if ctx.Err() != nil {
		return
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	a.mu.Lock()
	a.progress = p
	a.mu.Unlock()

	a.progressStream.Publish(p)
}

func (a *coinAdapter) updateHeight(ctx context.Context, height int64) {
	a.mu.Lock()
	changed := height != a.latestBlockHeight
	a.latestBlockHeight = height
	a.mu.Unlock()

	if changed && ctx.Err() == nil {
		a.heightSignal.Emit()
	}
}

func (a *coinAdapter) updateBalance(ctx context.Context, balance decimal.Decimal) {
	a.mu.Lock()
	changed := !balance.Equal(a.balance)
	a.balance = balance
	a.mu.Unlock()

	if changed && ctx.Err() == nil {
		a.balanceSignal.Emit()
	}
}

func (a *coinAdapter) updateRecords(ctx context.Context, txs []chain.TxInfo) {
	records := make([]models.TransactionRecord, len(txs))
	for i, tx := range txs {
		records[i] = models.TransactionRecord{
			Hash:        tx.Hash,
			Amount:      tx.Amount.Abs(),
			Fee:         tx.Fee,
			Timestamp:   tx.Timestamp,
			BlockHeight: tx.BlockHeight,
			Incoming:    tx.Amount.Sign() >= 0,
			From:        tx.From,
			To:          tx.To,
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	a.mu.Lock()
	changed := recordsChanged(a.records, records)
	a.records = records
	a.mu.Unlock()

	if changed && ctx.Err() == nil {
		a.txSignal.Emit()
	}
}

func recordsChanged(old, new []models.TransactionRecord) bool {
	if len(old) != len(new) {
		return true
	}
	for i := range old {
		if old[i].Hash != new[i].Hash || old[i].BlockHeight != new[i].BlockHeight {
			return true
		}
	}
	return false
}

// Fee estimates the network fee for transferring value. senderPay toggles
// whether the fee is added on top of value or deducted from it; the fee
// amount itself is the same either way.
func (a *coinAdapter) Fee(value decimal.Decimal, senderPay bool) decimal.Decimal {
	a.mu.RLock()
	feeRate := a.feeRate
	a.mu.RUnlock()

	fee := a.feeFn(feeRate, value)
	if !senderPay && fee.GreaterThan(value) {
		// Deducting more than the transfer carries is impossible.
		return value
	}
	return fee
}

func (a *coinAdapter) Validate(address string) bool {
	return a.validateFn(address)
}

// Send validates the address and spendable balance before touching the
// network, then signs and broadcasts in the background. The completion
// callback observes the broadcast attempt, not on-chain confirmation, and
// fires before the balance-changed notification.
func (a *coinAdapter) Send(address string, value decimal.Decimal, completion func(error)) {
	complete := func(err error) {
		if completion != nil {
			completion(err)
		}
	}

	// Pre-flight failures complete synchronously and never reach the network.
	if !a.Validate(address) {
		complete(core.ErrInvalidAddress)
		return
	}

	fee := a.Fee(value, true)
	if value.Add(fee).GreaterThan(a.Balance()) {
		complete(core.ErrInsufficientFunds)
		return
	}

	a.lifecycleMu.Lock()
	if !a.started || a.cleared {
		a.lifecycleMu.Unlock()
		complete(fmt.Errorf("adapter %s is not running", a.id))
		return
	}
	ctx := a.ctx
	a.lifecycleMu.Unlock()

	go func() {
		rawTx, err := a.signer.SignTransfer(ctx, a.accountCoin.Coin, address, value.String(), fee.String())
		if err != nil {
			complete(fmt.Errorf("unable to sign transfer: %w", err))
			return
		}

		txid, err := a.client.Broadcast(ctx, rawTx)
		if err != nil {
			complete(fmt.Errorf("unable to broadcast: %w", err))
			return
		}

		zap.L().Info("Transfer broadcast",
			zap.String("id", a.id),
			zap.String("coin", a.accountCoin.Coin.Code),
			zap.String("txid", txid),
			zap.String("amount", value.String()))

		complete(nil)
		// Pick up the pending transaction and updated balance.
		a.Refresh()
	}()
}
