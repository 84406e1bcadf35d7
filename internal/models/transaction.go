package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is an immutable snapshot of a single on-chain transaction
// as observed by one adapter. The manager and UI only ever read copies.
type TransactionRecord struct {
	Hash        string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Timestamp   time.Time
	BlockHeight int64 // 0 while unconfirmed
	Incoming    bool
	From        string
	To          string
}

// Confirmations reports how deep the transaction is relative to the given
// chain tip. Unconfirmed transactions report 0.
func (t TransactionRecord) Confirmations(latestBlockHeight int64) int64 {
	if t.BlockHeight == 0 || latestBlockHeight < t.BlockHeight {
		return 0
	}
	return latestBlockHeight - t.BlockHeight + 1
}
