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

package esplora

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wallet-core-go/internal/chain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

var satsPerCoin = decimal.New(1, 8)

// Client talks to an esplora-style REST API for bitcoin-family chains.
type Client struct {
	baseURL    string
	httpClient http.Client
}

var _ chain.Client = (*Client)(nil)

func NewClient(baseURL string) (*Client, error) {
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
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: http.Client{
			Transport: tr,
			Timeout:   60 * time.Second,
		},
	}, nil
}

func (c *Client) LatestBlockHeight(ctx context.Context) (int64, error) {
	body, err := c.get(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tip height %q: %w", string(body), err)
	}
	return height, nil
}

type addressStats struct {
	ChainStats struct {
		FundedSum int64 `json:"funded_txo_sum"`
		SpentSum  int64 `json:"spent_txo_sum"`
	} `json:"chain_stats"`
}

func (c *Client) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	body, err := c.get(ctx, "/address/"+address)
	if err != nil {
		return decimal.Zero, err
	}

	var stats addressStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse address stats: %w", err)
	}

	sats := stats.ChainStats.FundedSum - stats.ChainStats.SpentSum
	return decimal.NewFromInt(sats).Div(satsPerCoin), nil
}

type addressTx struct {
	Txid string `json:"txid"`
	Fee  int64  `json:"fee"`
	Vin  []struct {
		Prevout struct {
			Address string `json:"scriptpubkey_address"`
			Value   int64  `json:"value"`
		} `json:"prevout"`
	} `json:"vin"`
	Vout []struct {
		Address string `json:"scriptpubkey_address"`
		Value   int64  `json:"value"`
	} `json:"vout"`
	Status struct {
		Confirmed   bool  `json:"confirmed"`
		BlockHeight int64 `json:"block_height"`
		BlockTime   int64 `json:"block_time"`
	} `json:"status"`
}

func (c *Client) Transactions(ctx context.Context, address string, sinceHeight int64) ([]chain.TxInfo, error) {
	body, err := c.get(ctx, "/address/"+address+"/txs")
	if err != nil {
		return nil, err
	}

	var txs []addressTx
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, fmt.Errorf("unable to parse address transactions: %w", err)
	}

	infos := make([]chain.TxInfo, 0, len(txs))
	for _, tx := range txs {
		if tx.Status.Confirmed && tx.Status.BlockHeight < sinceHeight {
			continue
		}
		infos = append(infos, c.toTxInfo(tx, address))
	}

	zap.L().Debug("Fetched address transactions",
		zap.String("address", address),
		zap.Int64("since_height", sinceHeight),
		zap.Int("count", len(infos)))

	return infos, nil
}

// toTxInfo nets the transaction's effect on the given address: outputs to it
// minus inputs from it, in coin units.
func (c *Client) toTxInfo(tx addressTx, address string) chain.TxInfo {
	var received, spent int64
	var from, to string

	for _, vin := range tx.Vin {
		if vin.Prevout.Address == address {
			spent += vin.Prevout.Value
		}
		if from == "" {
			from = vin.Prevout.Address
		}
	}
	for _, vout := range tx.Vout {
		if vout.Address == address {
			received += vout.Value
		} else if to == "" {
			to = vout.Address
		}
	}

	net := received - spent
	if net >= 0 {
		to = address
	} else {
		from = address
		// Fee is carried by the sender; exclude it from the transfer amount.
		net += tx.Fee
	}

	var blockTime time.Time
	if tx.Status.BlockTime > 0 {
		blockTime = time.Unix(tx.Status.BlockTime, 0).UTC()
	} else {
		blockTime = time.Now().UTC()
	}

	return chain.TxInfo{
		Hash:        tx.Txid,
		Amount:      decimal.NewFromInt(net).Div(satsPerCoin),
		Fee:         decimal.NewFromInt(tx.Fee).Div(satsPerCoin),
		Timestamp:   blockTime,
		BlockHeight: tx.Status.BlockHeight,
		From:        from,
		To:          to,
	}
}

func (c *Client) Broadcast(ctx context.Context, rawTx []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tx", bytes.NewReader(rawTx))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("broadcast failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read broadcast response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("broadcast rejected with status %d: %s", resp.StatusCode, string(body))
	}

	txid := strings.TrimSpace(string(body))
	zap.L().Info("Broadcast transaction", zap.String("txid", txid))
	return txid, nil
}

// FeeRate returns the sat/vB estimate for confirmation within ~3 blocks.
func (c *Client) FeeRate(ctx context.Context) (decimal.Decimal, error) {
	body, err := c.get(ctx, "/fee-estimates")
	if err != nil {
		return decimal.Zero, err
	}

	var estimates map[string]float64
	if err := json.Unmarshal(body, &estimates); err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse fee estimates: %w", err)
	}

	if rate, ok := estimates["3"]; ok {
		return decimal.NewFromFloat(rate), nil
	}
	if rate, ok := estimates["6"]; ok {
		return decimal.NewFromFloat(rate), nil
	}
	return decimal.Zero, fmt.Errorf("no usable fee estimate in response")
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	return io.ReadAll(resp.Body)
}
