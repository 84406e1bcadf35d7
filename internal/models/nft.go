package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NftAssetRecord is a cached NFT asset entry, keyed by
// (AccountId, TokenId, ContractAddress).
type NftAssetRecord struct {
	AccountId       string
	TokenId         string
	ContractAddress string
	CollectionUid   string
	Name            string
	ImageUrl        string
	Description     string
	OnSale          bool
	LastSalePrice   decimal.Decimal
	LastSaleCoin    string
	OwnedCount      int
	UpdatedAt       time.Time
}
