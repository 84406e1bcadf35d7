package adapter

import (
	"wallet-core-go/internal/models"
	"wallet-core-go/internal/pubsub"

	"github.com/shopspring/decimal"
)

// Adapter bridges one coin's chain client to a uniform contract so the rest
// of the system never special-cases a coin type. Balance, transaction list
// and block height each have their own notification channel; a received
// signal means "re-read the current snapshot", it carries no value. Snapshot
// reads are non-blocking and reflect the latest completed sync step.
type Adapter interface {
	Id() string
	Coin() models.Coin

	Balance() decimal.Decimal
	BalanceSignal() *pubsub.Signal

	LatestBlockHeight() int64
	HeightSignal() *pubsub.Signal

	TransactionRecords() []models.TransactionRecord
	TransactionsSignal() *pubsub.Signal

	// SyncProgress is a fraction in [0, 1]; it reaches exactly 1 when a sync
	// completes.
	SyncProgress() float64
	ProgressStream() *pubsub.Stream[float64]

	// SyncErrorStream surfaces per-adapter sync failures. A failure here
	// never aborts sibling adapters.
	SyncErrorStream() *pubsub.Stream[error]

	ReceiveAddress() string

	Start()
	Refresh()
	Clear()

	// Send broadcasts a transfer. Validation and spendable-balance failures
	// complete synchronously before any network interaction; otherwise
	// completion is invoked once the broadcast attempt finishes.
	// Completion fires before the balance-changed notification: the balance
	// updates on the next sync after the chain source confirms.
	Send(address string, value decimal.Decimal, completion func(error))

	// Fee estimates the network fee for transferring value at the current
	// fee-rate knowledge. senderPay toggles whether the fee is added on top
	// of value (true) or deducted from it (false). Never touches the network.
	Fee(value decimal.Decimal, senderPay bool) decimal.Decimal

	// Validate performs syntactic/checksum validation of an address for this
	// coin's format. No network access.
	Validate(address string) bool
}
