package chain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TxInfo is one on-chain transaction as reported by a chain source, amounts
// denominated in the coin's display unit. Amount is signed relative to the
// queried address: positive for incoming funds.
type TxInfo struct {
	Hash        string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Timestamp   time.Time
	BlockHeight int64 // 0 while unconfirmed
	From        string
	To          string
}

// Client is the network boundary one adapter bridges to. Implementations
// exist per chain family; everything above this interface is chain-agnostic.
type Client interface {
	LatestBlockHeight(ctx context.Context) (int64, error)
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
	Transactions(ctx context.Context, address string, sinceHeight int64) ([]TxInfo, error)
	Broadcast(ctx context.Context, rawTx []byte) (string, error)
	// FeeRate returns the current fee per size unit (sat/vB for bitcoin
	// family, wei per gas for ethereum family).
	FeeRate(ctx context.Context) (decimal.Decimal, error)
}
