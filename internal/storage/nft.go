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

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wallet-core-go/internal/models"

	"github.com/shopspring/decimal"
)

// NftAsset returns the cached asset, or nil when nothing is cached yet.
func (s *Service) NftAsset(ctx context.Context, accountId, tokenId, contractAddress string) (*models.NftAssetRecord, error) {
	row := s.db.QueryRowContext(ctx, queryGetNftAsset, accountId, tokenId, contractAddress)
	record, err := scanNftAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read nft asset: %w", err)
	}
	return record, nil
}

// SaveNftAssets upserts the given records in one transaction.
func (s *Service) SaveNftAssets(ctx context.Context, records []models.NftAssetRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		_, err := tx.ExecContext(ctx, queryUpsertNftAsset,
			r.AccountId, r.TokenId, r.ContractAddress, r.CollectionUid, r.Name, r.ImageUrl,
			r.Description, r.OnSale, r.LastSalePrice.String(), r.LastSaleCoin, r.OwnedCount)
		if err != nil {
			return fmt.Errorf("unable to upsert nft asset %s/%s: %w", r.ContractAddress, r.TokenId, err)
		}
	}
	return tx.Commit()
}

func (s *Service) NftAssetsForAccount(ctx context.Context, accountId string) ([]models.NftAssetRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryGetNftAssetsForAccount, accountId)
	if err != nil {
		return nil, fmt.Errorf("unable to list nft assets: %w", err)
	}
	defer rows.Close()

	var records []models.NftAssetRecord
	for rows.Next() {
		record, err := scanNftAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan nft asset: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNftAsset(row rowScanner) (*models.NftAssetRecord, error) {
	var r models.NftAssetRecord
	var lastSalePrice string
	err := row.Scan(&r.AccountId, &r.TokenId, &r.ContractAddress, &r.CollectionUid, &r.Name,
		&r.ImageUrl, &r.Description, &r.OnSale, &lastSalePrice, &r.LastSaleCoin,
		&r.OwnedCount, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.LastSalePrice, err = decimal.NewFromString(lastSalePrice)
	if err != nil {
		return nil, fmt.Errorf("invalid cached sale price %q: %w", lastSalePrice, err)
	}
	return &r, nil
}
