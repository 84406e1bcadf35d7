package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"wallet-core-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}
	return service, cleanup
}

func TestSettings_DefaultsWhenUnset(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	lang, err := service.CurrentLanguage()
	if err != nil {
		t.Fatalf("CurrentLanguage failed: %v", err)
	}
	if lang != "" {
		t.Errorf("Expected empty language, got %q", lang)
	}

	backedUp, err := service.IsBackedUp()
	if err != nil {
		t.Fatalf("IsBackedUp failed: %v", err)
	}
	if backedUp {
		t.Error("Expected backed up to default to false")
	}

	understood, err := service.IUnderstand()
	if err != nil {
		t.Fatalf("IUnderstand failed: %v", err)
	}
	if understood {
		t.Error("Expected the risk acknowledgement to default to false")
	}

	attempts, err := service.UnlockAttemptsLeft()
	if err != nil {
		t.Fatalf("UnlockAttemptsLeft failed: %v", err)
	}
	if attempts != defaultUnlockAttempts {
		t.Errorf("Expected %d attempts, got %d", defaultUnlockAttempts, attempts)
	}

	exit, err := service.LastExitDate()
	if err != nil {
		t.Fatalf("LastExitDate failed: %v", err)
	}
	if !exit.IsZero() {
		t.Errorf("Expected zero exit date, got %v", exit)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	if err := service.SetCurrentLanguage("de"); err != nil {
		t.Fatalf("SetCurrentLanguage failed: %v", err)
	}
	lang, err := service.CurrentLanguage()
	if err != nil {
		t.Fatalf("CurrentLanguage failed: %v", err)
	}
	if lang != "de" {
		t.Errorf("Expected de, got %q", lang)
	}

	if err := service.SetBiometricOn(true); err != nil {
		t.Fatalf("SetBiometricOn failed: %v", err)
	}
	on, err := service.IsBiometricOn()
	if err != nil {
		t.Fatalf("IsBiometricOn failed: %v", err)
	}
	if !on {
		t.Error("Expected biometric on")
	}

	if err := service.SetIUnderstand(true); err != nil {
		t.Fatalf("SetIUnderstand failed: %v", err)
	}
	understood, err := service.IUnderstand()
	if err != nil {
		t.Fatalf("IUnderstand failed: %v", err)
	}
	if !understood {
		t.Error("Expected the risk acknowledgement to persist")
	}

	if err := service.SetUnlockAttemptsLeft(2); err != nil {
		t.Fatalf("SetUnlockAttemptsLeft failed: %v", err)
	}
	attempts, err := service.UnlockAttemptsLeft()
	if err != nil {
		t.Fatalf("UnlockAttemptsLeft failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}

	exit := time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)
	if err := service.SetLastExitDate(exit); err != nil {
		t.Fatalf("SetLastExitDate failed: %v", err)
	}
	got, err := service.LastExitDate()
	if err != nil {
		t.Fatalf("LastExitDate failed: %v", err)
	}
	if !got.Equal(exit) {
		t.Errorf("Expected %v, got %v", exit, got)
	}

	if err := service.SetBaseCurrency("EUR"); err != nil {
		t.Fatalf("SetBaseCurrency failed: %v", err)
	}
	code, err := service.BaseCurrency()
	if err != nil {
		t.Fatalf("BaseCurrency failed: %v", err)
	}
	if code != "EUR" {
		t.Errorf("Expected EUR, got %q", code)
	}
}

func TestSettings_OverwriteKeepsLatest(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	if err := service.SetBaseCurrency("USD"); err != nil {
		t.Fatalf("SetBaseCurrency failed: %v", err)
	}
	if err := service.SetBaseCurrency("EUR"); err != nil {
		t.Fatalf("SetBaseCurrency failed: %v", err)
	}

	code, err := service.BaseCurrency()
	if err != nil {
		t.Fatalf("BaseCurrency failed: %v", err)
	}
	if code != "EUR" {
		t.Errorf("Expected EUR, got %q", code)
	}
}

func TestSettings_ClearAll(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	if err := service.SetCurrentLanguage("fr"); err != nil {
		t.Fatalf("SetCurrentLanguage failed: %v", err)
	}
	if err := service.SetBackedUp(true); err != nil {
		t.Fatalf("SetBackedUp failed: %v", err)
	}

	if err := service.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	lang, err := service.CurrentLanguage()
	if err != nil {
		t.Fatalf("CurrentLanguage failed: %v", err)
	}
	if lang != "" {
		t.Errorf("Expected empty language after clear, got %q", lang)
	}
	backedUp, err := service.IsBackedUp()
	if err != nil {
		t.Fatalf("IsBackedUp failed: %v", err)
	}
	if backedUp {
		t.Error("Expected backed up false after clear")
	}
}

func TestNftAssets_SaveAndLookup(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	records := []models.NftAssetRecord{
		{
			AccountId:       "acct-1",
			TokenId:         "42",
			ContractAddress: "0xabc",
			CollectionUid:   "punks",
			Name:            "Punk 42",
			ImageUrl:        "https://img.example/42.png",
			OnSale:          true,
			LastSalePrice:   decimal.RequireFromString("1.25"),
			LastSaleCoin:    "ETH",
			OwnedCount:      1,
		},
		{
			AccountId:       "acct-1",
			TokenId:         "7",
			ContractAddress: "0xdef",
			Name:            "Other 7",
			LastSalePrice:   decimal.Zero,
			OwnedCount:      2,
		},
	}
	if err := service.SaveNftAssets(ctx, records); err != nil {
		t.Fatalf("SaveNftAssets failed: %v", err)
	}

	got, err := service.NftAsset(ctx, "acct-1", "42", "0xabc")
	if err != nil {
		t.Fatalf("NftAsset failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected cached asset, got nil")
	}
	if got.Name != "Punk 42" || !got.OnSale {
		t.Errorf("Unexpected asset: %+v", got)
	}
	if !got.LastSalePrice.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("Expected sale price 1.25, got %s", got.LastSalePrice)
	}

	missing, err := service.NftAsset(ctx, "acct-1", "999", "0xabc")
	if err != nil {
		t.Fatalf("NftAsset failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for uncached asset, got %+v", missing)
	}

	all, err := service.NftAssetsForAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("NftAssetsForAccount failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 assets, got %d", len(all))
	}

	other, err := service.NftAssetsForAccount(ctx, "acct-2")
	if err != nil {
		t.Fatalf("NftAssetsForAccount failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no assets for other account, got %d", len(other))
	}
}

func TestNftAssets_UpsertRefreshesMetadata(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	record := models.NftAssetRecord{
		AccountId:       "acct-1",
		TokenId:         "42",
		ContractAddress: "0xabc",
		Name:            "Punk 42",
		LastSalePrice:   decimal.NewFromInt(1),
		OwnedCount:      1,
	}
	if err := service.SaveNftAssets(ctx, []models.NftAssetRecord{record}); err != nil {
		t.Fatalf("SaveNftAssets failed: %v", err)
	}

	record.Name = "Punk 42 (renamed)"
	record.LastSalePrice = decimal.NewFromInt(3)
	if err := service.SaveNftAssets(ctx, []models.NftAssetRecord{record}); err != nil {
		t.Fatalf("SaveNftAssets failed: %v", err)
	}

	got, err := service.NftAsset(ctx, "acct-1", "42", "0xabc")
	if err != nil {
		t.Fatalf("NftAsset failed: %v", err)
	}
	if got.Name != "Punk 42 (renamed)" {
		t.Errorf("Expected refreshed name, got %q", got.Name)
	}
	if !got.LastSalePrice.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected refreshed price 3, got %s", got.LastSalePrice)
	}

	all, err := service.NftAssetsForAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("NftAssetsForAccount failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Upsert duplicated the row, got %d", len(all))
	}
}

func TestNewService_RejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	if _, err := NewService(ctx, models.DatabaseConfig{}); err == nil {
		t.Error("Expected error for empty path")
	}

	cfg := models.DatabaseConfig{Path: ":memory:", MaxOpenConns: 0, PingTimeout: time.Second}
	if _, err := NewService(ctx, cfg); err == nil {
		t.Error("Expected error for zero max open connections")
	}
}
