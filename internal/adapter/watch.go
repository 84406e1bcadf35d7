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
)

// WatchManager forwards balance and sync-error notifications from every
// adapter managed by m to the given callbacks. It follows the manager's
// changed signal, so adapters added by a later SetAccountCoins are picked up
// too. Blocks until ctx is cancelled or the manager is cleared.
func WatchManager(ctx context.Context, m *Manager, onBalance func(Adapter), onSyncError func(Adapter, error)) {
	changedCh, changedCancel := m.ChangedSignal().Subscribe()
	defer changedCancel()

	watched := make(map[string]struct{})
	wire := func() {
		for _, a := range m.Adapters() {
			if _, ok := watched[a.Id()]; ok {
				continue
			}
			watched[a.Id()] = struct{}{}

			balanceCh, balanceCancel := a.BalanceSignal().Subscribe()
			errCh, errCancel := a.SyncErrorStream().Subscribe()
			go func(a Adapter) {
				defer balanceCancel()
				defer errCancel()
				for {
					select {
					case _, ok := <-balanceCh:
						if !ok {
							return
						}
						onBalance(a)
					case err, ok := <-errCh:
						if !ok {
							return
						}
						onSyncError(a, err)
					case <-ctx.Done():
						return
					}
				}
			}(a)
		}
	}
	wire()

	for {
		select {
		case _, ok := <-changedCh:
			if !ok {
				return
			}
			wire()
		case <-ctx.Done():
			return
		}
	}
}
