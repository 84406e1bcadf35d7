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

package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"wallet-core-go/internal/core"
	"wallet-core-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// LookupClient fetches fiat exchange rates from a remote source. All calls
// may fail with a transport error (retryable) or a not-found error, which the
// cache maps to core.ErrRateUnavailable.
type LookupClient interface {
	LatestRate(ctx context.Context, coinCode, currencyCode string) (decimal.Decimal, error)
	RateAt(ctx context.Context, coinCode, currencyCode string, year, month, day, hour, minute int) (decimal.Decimal, error)
	RateByDay(ctx context.Context, coinCode, currencyCode string, year, month, day int) (decimal.Decimal, error)
	Currencies(ctx context.Context) ([]models.Currency, error)
}

type rateResponse struct {
	Rate string `json:"rate"`
}

type currenciesResponse struct {
	Currencies []struct {
		Code     string `json:"code"`
		Symbol   string `json:"symbol"`
		Decimals int    `json:"decimals"`
	} `json:"currencies"`
}

// HttpLookupClient talks to the rate API over HTTP.
type HttpLookupClient struct {
	baseURL    string
	httpClient http.Client
}

var _ LookupClient = (*HttpLookupClient)(nil)

func NewHttpLookupClient(baseURL string) (*HttpLookupClient, error) {
	httpClient, err := createHttpClient()
	if err != nil {
		return nil, fmt.Errorf("unable to create http client: %w", err)
	}

	return &HttpLookupClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

func createHttpClient() (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	return http.Client{
		Transport: tr,
		Timeout:   60 * time.Second,
	}, nil
}

func (c *HttpLookupClient) LatestRate(ctx context.Context, coinCode, currencyCode string) (decimal.Decimal, error) {
	path := fmt.Sprintf("%s/rates/%s/%s/latest", c.baseURL, coinCode, currencyCode)
	return c.fetchRate(ctx, path)
}

func (c *HttpLookupClient) RateAt(ctx context.Context, coinCode, currencyCode string, year, month, day, hour, minute int) (decimal.Decimal, error) {
	path := fmt.Sprintf("%s/rates/%s/%s/%04d/%02d/%02d/%02d/%02d",
		c.baseURL, coinCode, currencyCode, year, month, day, hour, minute)
	return c.fetchRate(ctx, path)
}

func (c *HttpLookupClient) RateByDay(ctx context.Context, coinCode, currencyCode string, year, month, day int) (decimal.Decimal, error) {
	path := fmt.Sprintf("%s/rates/%s/%s/%04d/%02d/%02d",
		c.baseURL, coinCode, currencyCode, year, month, day)
	return c.fetchRate(ctx, path)
}

func (c *HttpLookupClient) Currencies(ctx context.Context) ([]models.Currency, error) {
	body, err := c.get(ctx, c.baseURL+"/currencies")
	if err != nil {
		return nil, err
	}

	var parsed currenciesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unable to parse currencies response: %w", err)
	}

	currencies := make([]models.Currency, len(parsed.Currencies))
	for i, cur := range parsed.Currencies {
		currencies[i] = models.Currency{
			Code:     cur.Code,
			Symbol:   cur.Symbol,
			Decimals: cur.Decimals,
		}
	}
	return currencies, nil
}

// fetchRate retries transient failures with exponential backoff. Not-found
// responses are terminal and reported as ErrRateUnavailable.
func (c *HttpLookupClient) fetchRate(ctx context.Context, url string) (decimal.Decimal, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<uint(attempt-1)) * time.Second
			zap.L().Debug("Retrying rate fetch",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return decimal.Zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.get(ctx, url)
		if err != nil {
			if ctx.Err() != nil || isNotFound(err) {
				return decimal.Zero, err
			}
			lastErr = err
			continue
		}

		var parsed rateResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return decimal.Zero, fmt.Errorf("unable to parse rate response: %w", err)
		}
		rate, err := decimal.NewFromString(parsed.Rate)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid rate value %q: %w", parsed.Rate, err)
		}
		return rate, nil
	}
	return decimal.Zero, lastErr
}

func (c *HttpLookupClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: no data at %s", core.ErrRateUnavailable, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d from %s", core.ErrTransport, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTransport, err)
	}
	return body, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrRateUnavailable)
}
