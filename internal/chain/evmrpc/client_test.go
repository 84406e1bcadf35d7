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

package evmrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func newRpcTestServer(t *testing.T, results map[string]string, seenIds *sync.Map) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if seenIds != nil {
			if _, loaded := seenIds.LoadOrStore(req.Id, struct{}{}); loaded {
				t.Errorf("request id %d reused across calls", req.Id)
			}
		}

		result, ok := results[req.Method]
		if !ok {
			t.Errorf("unexpected method %s", req.Method)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"jsonrpc":"2.0","id":0,"result":` + result + `}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
}

func TestLatestBlockHeight_ParsesHexQuantity(t *testing.T) {
	server := newRpcTestServer(t, map[string]string{
		"eth_blockNumber": `"0x12d687"`,
	}, nil)
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	height, err := client.LatestBlockHeight(context.Background())
	if err != nil {
		t.Fatalf("LatestBlockHeight returned error: %v", err)
	}
	if height != 1234567 {
		t.Errorf("expected height 1234567, got %d", height)
	}
}

func TestCall_ConcurrentRequestsUseDistinctIds(t *testing.T) {
	var seenIds sync.Map
	server := newRpcTestServer(t, map[string]string{
		"eth_blockNumber": `"0x10"`,
	}, &seenIds)
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, callErr := client.LatestBlockHeight(context.Background())
			errs <- callErr
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent LatestBlockHeight returned error: %v", err)
		}
	}

	var ids int
	seenIds.Range(func(_, _ interface{}) bool {
		ids++
		return true
	})
	if ids != workers {
		t.Errorf("expected %d distinct request ids, got %d", workers, ids)
	}
}

func TestTransactions_NoIndexerReturnsEmpty(t *testing.T) {
	server := newRpcTestServer(t, nil, nil)
	defer server.Close()

	client, err := NewClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	txs, err := client.Transactions(context.Background(), "0xabc", 0)
	if err != nil {
		t.Fatalf("Transactions returned error: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("expected no transactions without an indexer, got %d", len(txs))
	}
}
