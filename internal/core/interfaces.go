package core

import (
	"context"
	"time"

	"wallet-core-go/internal/models"
)

// SecureStorage holds seed words and the unlock PIN. The wallet core only
// reads derived signing material through this boundary; it never stores
// secrets itself.
type SecureStorage interface {
	SavedWords() ([]string, error)
	SaveWords(words []string) error
	WordsAreEmpty() bool
	SavedPin() (string, error)
	SavePin(pin string) error
	PinIsEmpty() bool
}

// EncryptionManager is the platform crypto boundary consumed when
// authenticating a send.
type EncryptionManager interface {
	Encrypt(data string) (string, error)
	Decrypt(data string) (string, error)
	CryptoObject() (any, error)
}

// TransactionSigner produces a signed raw transaction for broadcast. Key
// derivation happens behind this boundary, outside the core.
type TransactionSigner interface {
	SignTransfer(ctx context.Context, coin models.Coin, toAddress string, amount, fee string) ([]byte, error)
}

// ClipboardManager is a thin platform passthrough.
type ClipboardManager interface {
	CopyText(text string)
	CopiedText() string
}

// LanguageManager exposes the active locale consumed by the formatter.
type LanguageManager interface {
	CurrentLanguage() string
	SetCurrentLanguage(tag string)
	AvailableLanguages() []string
}

// SystemInfoManager reports platform capabilities.
type SystemInfoManager interface {
	AppVersion() string
	BiometryAvailable() bool
}

// LocalStorage persists scalar wallet settings.
type LocalStorage interface {
	CurrentLanguage() (string, error)
	SetCurrentLanguage(tag string) error
	IsBackedUp() (bool, error)
	SetBackedUp(v bool) error
	IUnderstand() (bool, error)
	SetIUnderstand(v bool) error
	IsBiometricOn() (bool, error)
	SetBiometricOn(v bool) error
	IsLightModeOn() (bool, error)
	SetLightModeOn(v bool) error
	LastExitDate() (time.Time, error)
	SetLastExitDate(t time.Time) error
	UnlockAttemptsLeft() (int, error)
	SetUnlockAttemptsLeft(n int) error
	BaseCurrency() (string, error)
	SetBaseCurrency(code string) error
	BlockTillDate() (time.Time, error)
	SetBlockTillDate(t time.Time) error
	ClearAll() error
}

// NftStorage caches NFT asset metadata keyed by
// (accountId, tokenId, contractAddress).
type NftStorage interface {
	NftAsset(ctx context.Context, accountId, tokenId, contractAddress string) (*models.NftAssetRecord, error)
	SaveNftAssets(ctx context.Context, records []models.NftAssetRecord) error
	NftAssetsForAccount(ctx context.Context, accountId string) ([]models.NftAssetRecord, error)
}
