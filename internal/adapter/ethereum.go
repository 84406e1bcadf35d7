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
	"encoding/hex"
	"strings"
	"time"

	"wallet-core-go/internal/chain"
	"wallet-core-go/internal/core"
	"wallet-core-go/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"
)

// Gas consumed by a plain value transfer.
const ethereumTransferGas = 21000

var weiPerEther = decimal.New(1, 18)

// NewEthereumAdapter builds an adapter for an ethereum account backed by a
// JSON-RPC chain client. Fee rates are interpreted as a gas price in wei.
func NewEthereumAdapter(accountCoin models.AccountCoin, client chain.Client, signer core.TransactionSigner, receiveAddress string, refreshInterval time.Duration) Adapter {
	a := newCoinAdapter(accountCoin, client, signer, receiveAddress, refreshInterval)
	a.validateFn = validateEthereumAddress
	a.feeFn = ethereumFee
	return a
}

// validateEthereumAddress accepts 20-byte hex addresses. All-lowercase and
// all-uppercase forms carry no checksum; mixed-case forms must satisfy the
// EIP-55 checksum.
func validateEthereumAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return false
	}
	body := address[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return false
	}
	lower := strings.ToLower(body)
	if body == lower || body == strings.ToUpper(body) {
		return true
	}
	return body == checksumEthereumAddress(lower)
}

func checksumEthereumAddress(lowerHex string) string {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(lowerHex))
	digest := hash.Sum(nil)

	out := []byte(lowerHex)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}

func ethereumFee(feeRate, _ decimal.Decimal) decimal.Decimal {
	return feeRate.Mul(decimal.NewFromInt(ethereumTransferGas)).Div(weiPerEther)
}
