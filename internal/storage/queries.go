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

const (
	// Settings queries
	queryGetSetting = `
		SELECT value
		FROM settings
		WHERE key = ?`

	queryUpsertSetting = `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	queryClearSettings = `
		DELETE FROM settings`

	// NFT asset queries
	queryGetNftAsset = `
		SELECT account_id, token_id, contract_address, collection_uid, name, image_url,
		       description, on_sale, last_sale_price, last_sale_coin, owned_count, updated_at
		FROM nft_assets
		WHERE account_id = ? AND token_id = ? AND contract_address = ?`

	queryGetNftAssetsForAccount = `
		SELECT account_id, token_id, contract_address, collection_uid, name, image_url,
		       description, on_sale, last_sale_price, last_sale_coin, owned_count, updated_at
		FROM nft_assets
		WHERE account_id = ?
		ORDER BY contract_address, token_id`

	queryUpsertNftAsset = `
		INSERT INTO nft_assets (
			account_id, token_id, contract_address, collection_uid, name, image_url,
			description, on_sale, last_sale_price, last_sale_coin, owned_count, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_id, contract_address, token_id) DO UPDATE SET
			collection_uid = excluded.collection_uid,
			name = excluded.name,
			image_url = excluded.image_url,
			description = excluded.description,
			on_sale = excluded.on_sale,
			last_sale_price = excluded.last_sale_price,
			last_sale_coin = excluded.last_sale_coin,
			owned_count = excluded.owned_count,
			updated_at = CURRENT_TIMESTAMP`
)
