package models

import (
	"github.com/shopspring/decimal"
)

// ChainType identifies the chain family an adapter bridges to.
type ChainType string

const (
	ChainBitcoin  ChainType = "bitcoin"
	ChainEthereum ChainType = "ethereum"
)

// Coin identifies a supported asset. Loaded once at configuration time and
// never mutated afterward; comparable so it can serve as a map key.
type Coin struct {
	Code     string
	Title    string
	Decimals int
	Type     ChainType
}

// Currency is a fiat display currency.
type Currency struct {
	Code     string // ISO code, e.g. "USD"
	Symbol   string // display symbol, e.g. "$"
	Decimals int    // decimal places used for short-form display
}

// CurrencyValue is an amount denominated in a fiat currency.
type CurrencyValue struct {
	Currency Currency
	Value    decimal.Decimal
}

// AccountCoin pairs an active account with one of its configured coins.
// One adapter exists per AccountCoin.
type AccountCoin struct {
	AccountId string
	Coin      Coin
}

// Key returns the identifier the adapter manager keys its collection by.
func (a AccountCoin) Key() string {
	return a.AccountId + ":" + a.Coin.Code
}
