package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the wallet core.
var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRateUnavailable   = errors.New("exchange rate unavailable")
	ErrTransport         = errors.New("transport failure")
)

// SyncError reports a failed sync for one adapter. It is scoped to that
// adapter and never aborts siblings.
type SyncError struct {
	CoinCode string
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed for %s: %v", e.CoinCode, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
