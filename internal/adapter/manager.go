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
	"fmt"
	"sync"

	"wallet-core-go/internal/models"
	"wallet-core-go/internal/pubsub"

	"go.uber.org/zap"
)

// Factory builds an adapter for an account coin. The manager owns the
// lifecycle of whatever it returns.
type Factory interface {
	NewAdapter(accountCoin models.AccountCoin) (Adapter, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(accountCoin models.AccountCoin) (Adapter, error)

func (f FactoryFunc) NewAdapter(accountCoin models.AccountCoin) (Adapter, error) {
	return f(accountCoin)
}

// Manager owns one adapter per enabled account coin and keeps the set in
// step with the wallet configuration.
type Manager struct {
	factory Factory

	mu       sync.RWMutex
	adapters map[string]Adapter
	order    []string
	started  bool
	cleared  bool

	changedSignal *pubsub.Signal
}

func NewManager(factory Factory) *Manager {
	return &Manager{
		factory:       factory,
		adapters:      make(map[string]Adapter),
		changedSignal: pubsub.NewSignal(),
	}
}

// Adapters returns the managed adapters in configuration order.
func (m *Manager) Adapters() []Adapter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	adapters := make([]Adapter, 0, len(m.order))
	for _, key := range m.order {
		adapters = append(adapters, m.adapters[key])
	}
	return adapters
}

// Adapter returns the adapter for the given account coin, if one is managed.
func (m *Manager) Adapter(accountCoin models.AccountCoin) (Adapter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.adapters[accountCoin.Key()]
	return a, ok
}

// ChangedSignal fires whenever the set of managed adapters changes.
func (m *Manager) ChangedSignal() *pubsub.Signal {
	return m.changedSignal
}

// SetAccountCoins reconciles the managed set against the wanted coins.
// Adapters for coins no longer wanted are cleared; new coins get a fresh
// adapter, started immediately when the manager is running. Adapters for
// coins present in both sets are untouched.
func (m *Manager) SetAccountCoins(accountCoins []models.AccountCoin) error {
	m.mu.Lock()

	if m.cleared {
		m.mu.Unlock()
		return fmt.Errorf("adapter manager is cleared")
	}

	wanted := make(map[string]struct{}, len(accountCoins))
	for _, ac := range accountCoins {
		wanted[ac.Key()] = struct{}{}
	}

	var removed []Adapter
	for key, a := range m.adapters {
		if _, ok := wanted[key]; !ok {
			removed = append(removed, a)
			delete(m.adapters, key)
		}
	}

	changed := len(removed) > 0
	order := make([]string, 0, len(accountCoins))
	for _, ac := range accountCoins {
		key := ac.Key()
		order = append(order, key)
		if _, ok := m.adapters[key]; ok {
			continue
		}

		a, err := m.factory.NewAdapter(ac)
		if err != nil {
			m.mu.Unlock()
			return fmt.Errorf("unable to create adapter for %s: %w", ac.Coin.Code, err)
		}
		m.adapters[key] = a
		if m.started {
			a.Start()
		}
		changed = true
	}
	m.order = order
	m.mu.Unlock()

	for _, a := range removed {
		a.Clear()
	}

	if changed {
		zap.L().Info("Adapter set updated", zap.Int("adapters", len(accountCoins)))
		m.changedSignal.Emit()
	}
	return nil
}

// Start launches every managed adapter. Starting twice is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started || m.cleared {
		m.mu.Unlock()
		return
	}
	m.started = true
	adapters := m.snapshotLocked()
	m.mu.Unlock()

	for _, a := range adapters {
		a.Start()
	}
}

// Refresh asks every managed adapter to re-sync. A failing adapter only
// surfaces on its own error stream and never blocks the others.
func (m *Manager) Refresh() {
	m.mu.RLock()
	adapters := m.snapshotLocked()
	m.mu.RUnlock()

	for _, a := range adapters {
		a.Refresh()
	}
}

// Clear tears down every managed adapter and waits for each to drain.
func (m *Manager) Clear() {
	m.mu.Lock()
	if m.cleared {
		m.mu.Unlock()
		return
	}
	m.cleared = true
	adapters := m.snapshotLocked()
	m.adapters = make(map[string]Adapter)
	m.order = nil
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, a := range adapters {
		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()
			a.Clear()
		}(a)
	}
	wg.Wait()

	m.changedSignal.Close()
	zap.L().Info("Adapter manager cleared")
}

func (m *Manager) snapshotLocked() []Adapter {
	adapters := make([]Adapter, 0, len(m.order))
	for _, key := range m.order {
		adapters = append(adapters, m.adapters[key])
	}
	return adapters
}
