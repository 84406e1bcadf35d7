package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet-core-go/internal/core"

	"github.com/shopspring/decimal"
)

func TestHttpLookupClient_LatestRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rates/BTC/USD/latest" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"rate":"64123.45"}`))
	}))
	defer server.Close()

	client, err := NewHttpLookupClient(server.URL)
	if err != nil {
		t.Fatalf("NewHttpLookupClient failed: %v", err)
	}

	rate, err := client.LatestRate(context.Background(), "BTC", "USD")
	if err != nil {
		t.Fatalf("LatestRate failed: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("64123.45")) {
		t.Errorf("Expected 64123.45, got %s", rate.String())
	}
}

func TestHttpLookupClient_RateAtPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"rate":"100"}`))
	}))
	defer server.Close()

	client, err := NewHttpLookupClient(server.URL)
	if err != nil {
		t.Fatalf("NewHttpLookupClient failed: %v", err)
	}

	if _, err := client.RateAt(context.Background(), "ETH", "EUR", 2024, 3, 5, 9, 7); err != nil {
		t.Fatalf("RateAt failed: %v", err)
	}
	if gotPath != "/rates/ETH/EUR/2024/03/05/09/07" {
		t.Errorf("Unexpected path %s", gotPath)
	}
}

func TestHttpLookupClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client, err := NewHttpLookupClient(server.URL)
	if err != nil {
		t.Fatalf("NewHttpLookupClient failed: %v", err)
	}

	_, err = client.RateByDay(context.Background(), "BTC", "USD", 2020, 1, 1)
	if !errors.Is(err, core.ErrRateUnavailable) {
		t.Errorf("Expected ErrRateUnavailable, got %v", err)
	}
}

func TestHttpLookupClient_Currencies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"currencies":[{"code":"USD","symbol":"$","decimals":2},{"code":"EUR","symbol":"€","decimals":2}]}`))
	}))
	defer server.Close()

	client, err := NewHttpLookupClient(server.URL)
	if err != nil {
		t.Fatalf("NewHttpLookupClient failed: %v", err)
	}

	currencies, err := client.Currencies(context.Background())
	if err != nil {
		t.Fatalf("Currencies failed: %v", err)
	}
	if len(currencies) != 2 {
		t.Fatalf("Expected 2 currencies, got %d", len(currencies))
	}
	if currencies[0].Code != "USD" || currencies[0].Symbol != "$" {
		t.Errorf("Unexpected first currency %+v", currencies[0])
	}
}
