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
	"fmt"

	"wallet-core-go/internal/core"
	"wallet-core-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time checks: *Service must satisfy the storage boundaries.
var (
	_ core.LocalStorage = (*Service)(nil)
	_ core.NftStorage   = (*Service)(nil)
)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Storage service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Scalar wallet settings, one row per key
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Cached NFT asset metadata
	CREATE TABLE IF NOT EXISTS nft_assets (
		account_id TEXT NOT NULL,
		token_id TEXT NOT NULL,
		contract_address TEXT NOT NULL,
		collection_uid TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		on_sale BOOLEAN NOT NULL DEFAULT 0,
		last_sale_price TEXT NOT NULL DEFAULT '0',
		last_sale_coin TEXT NOT NULL DEFAULT '',
		owned_count INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (account_id, contract_address, token_id)
	);

	-- Create index for per-account listing
	CREATE INDEX IF NOT EXISTS idx_nft_assets_account ON nft_assets(account_id);
	`

	_, err := s.db.Exec(schema)
	return err
}
