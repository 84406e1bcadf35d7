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
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"sync/atomic"
	"strings"
	"time"

	"wallet-core-go/internal/chain"

	"github.com/shopspring/decimal"
	"golang.org/x/net/http2"
)

var weiPerCoin = decimal.New(1, 18)

// Client talks to an ethereum-family node over JSON-RPC; transaction history
// comes from an indexer-style endpoint since bare nodes cannot list
// transactions by address.
type Client struct {
	rpcURL     string
	indexURL   string
	httpClient http.Client
	nextId     atomic.Int64
}

var _ chain.Client = (*Client)(nil)

func NewClient(rpcURL, indexURL string) (*Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, fmt.Errorf("unable to configure transport: %w", err)
	}

	return &Client{
		rpcURL:   rpcURL,
		indexURL: strings.TrimRight(indexURL, "/"),
		httpClient: http.Client{
			Transport: tr,
			Timeout:   60 * time.Second,
		},
	}, nil
}

type rpcRequest struct {
	JsonRpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	Id      int64         `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JsonRpc: "2.0",
		Method:  method,
		Params:  params,
		Id:      c.nextId.Add(1),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read rpc response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc call %s returned status %d", method, resp.StatusCode)
	}

	var parsed rpcResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unable to parse rpc response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	return parsed.Result, nil
}

func (c *Client) callHexQuantity(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	result, err := c.call(ctx, method, params...)
	if err != nil {
		return nil, err
	}

	var quantity string
	if err := json.Unmarshal(result, &quantity); err != nil {
		return nil, fmt.Errorf("unable to parse %s result: %w", method, err)
	}
	return parseHexQuantity(quantity)
}

func parseHexQuantity(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	n, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return n, nil
}

func (c *Client) LatestBlockHeight(ctx context.Context) (int64, error) {
	n, err := c.callHexQuantity(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

func (c *Client) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	n, err := c.callHexQuantity(ctx, "eth_getBalance", address, "latest")
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(n, 0).Div(weiPerCoin), nil
}

type indexedTx struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"` // wei, decimal string
	GasUsed     int64  `json:"gas_used"`
	GasPrice    string `json:"gas_price"` // wei, decimal string
	Timestamp   int64  `json:"timestamp"`
	BlockHeight int64  `json:"block_height"`
}

type indexResponse struct {
	Transactions []indexedTx `json:"transactions"`
}

func (c *Client) Transactions(ctx context.Context, address string, sinceHeight int64) ([]chain.TxInfo, error) {
	// Without an indexer the node can still serve heights and balances; the
	// transaction list just stays empty.
	if c.indexURL == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/address/%s/txs?from_height=%d", c.indexURL, address, sinceHeight)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index query returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed indexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unable to parse index response: %w", err)
	}

	lowered := strings.ToLower(address)
	infos := make([]chain.TxInfo, 0, len(parsed.Transactions))
	for _, tx := range parsed.Transactions {
		value, err := decimal.NewFromString(tx.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid value in tx %s: %w", tx.Hash, err)
		}
		gasPrice, err := decimal.NewFromString(tx.GasPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid gas price in tx %s: %w", tx.Hash, err)
		}

		amount := value.Div(weiPerCoin)
		if strings.ToLower(tx.From) == lowered {
			amount = amount.Neg()
		}

		infos = append(infos, chain.TxInfo{
			Hash:        tx.Hash,
			Amount:      amount,
			Fee:         gasPrice.Mul(decimal.NewFromInt(tx.GasUsed)).Div(weiPerCoin),
			Timestamp:   time.Unix(tx.Timestamp, 0).UTC(),
			BlockHeight: tx.BlockHeight,
			From:        tx.From,
			To:          tx.To,
		})
	}
	return infos, nil
}

func (c *Client) Broadcast(ctx context.Context, rawTx []byte) (string, error) {
	result, err := c.call(ctx, "eth_sendRawTransaction", "0x"+hex.EncodeToString(rawTx))
	if err != nil {
		return "", err
	}

	var hash string
	if err := json.Unmarshal(result, &hash); err != nil {
		return "", fmt.Errorf("unable to parse broadcast result: %w", err)
	}
	return hash, nil
}

// FeeRate returns the current gas price in wei.
func (c *Client) FeeRate(ctx context.Context) (decimal.Decimal, error) {
	n, err := c.callHexQuantity(ctx, "eth_gasPrice")
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(n, 0), nil
}
