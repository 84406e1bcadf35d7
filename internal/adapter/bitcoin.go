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
	"time"

	"wallet-core-go/internal/chain"
	"wallet-core-go/internal/core"
	"wallet-core-go/internal/models"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/shopspring/decimal"
)

// Typical size of a one-input two-output P2PKH transaction.
const bitcoinTxVbytes = 226

var satsPerBitcoin = decimal.New(1, 8)

// NewBitcoinAdapter builds an adapter for a bitcoin account backed by an
// esplora-style chain client. Fee rates are interpreted as sat/vB.
func NewBitcoinAdapter(accountCoin models.AccountCoin, client chain.Client, signer core.TransactionSigner, receiveAddress string, refreshInterval time.Duration) Adapter {
	a := newCoinAdapter(accountCoin, client, signer, receiveAddress, refreshInterval)
	a.validateFn = validateBitcoinAddress
	a.feeFn = bitcoinFee
	return a
}

func validateBitcoinAddress(address string) bool {
	if address == "" {
		return false
	}
	decoded, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams)
	if err != nil {
		return false
	}
	return decoded.IsForNet(&chaincfg.MainNetParams)
}

func bitcoinFee(feeRate, _ decimal.Decimal) decimal.Decimal {
	return feeRate.Mul(decimal.NewFromInt(bitcoinTxVbytes)).Div(satsPerBitcoin)
}
