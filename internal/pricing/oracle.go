package pricing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tonpay/solvere/pkg/logger"
)

const (
	defaultMarketURL = "https://api.coingecko.com/api/v3/simple/price?ids=the-open-network&vs_currencies=usd"

	// cacheTTL bounds how long a fetched rate is reused. Staleness beyond
	// this window is bounded further by the quote expiry on each intent.
	cacheTTL = 60 * time.Second
)

// FallbackTONPrice is served whenever the market source cannot be reached.
// Price lookup must never block checkout.
var FallbackTONPrice = decimal.NewFromInt(6)

// Oracle fetches the TON/USD rate from a market-data source with a short
// in-memory cache. A single attempt per call, no retries.
type Oracle struct {
	logger *logger.Logger
	url    string
	client *http.Client

	mu        sync.RWMutex
	cached    decimal.Decimal
	fetchedAt time.Time
}

// NewOracle creates an Oracle. An empty url selects the default market
// source.
func NewOracle(logger *logger.Logger, url string) *Oracle {
	if url == "" {
		url = defaultMarketURL
	}
	return &Oracle{
		logger: logger,
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// TONPrice returns the current TON/USD rate. On any failure it returns
// FallbackTONPrice instead of an error.
func (o *Oracle) TONPrice() decimal.Decimal {
	o.mu.RLock()
	if !o.fetchedAt.IsZero() && time.Since(o.fetchedAt) < cacheTTL {
		cached := o.cached
		o.mu.RUnlock()
		return cached
	}
	o.mu.RUnlock()

	rate, err := o.fetch()
	if err != nil {
		o.logger.Error("Failed to fetch TON price, using fallback", "error", err, "fallback", FallbackTONPrice)
		return FallbackTONPrice
	}

	o.mu.Lock()
	o.cached = rate
	o.fetchedAt = time.Now()
	o.mu.Unlock()

	return rate
}

func (o *Oracle) fetch() (decimal.Decimal, error) {
	resp, err := o.client.Get(o.url)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch market price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status code %d from market source", resp.StatusCode)
	}

	var body map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode market response: %w", err)
	}

	raw, ok := body["the-open-network"]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("market response is missing the usd rate")
	}

	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed usd rate %q: %w", raw.String(), err)
	}
	if rate.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive usd rate %s", rate)
	}

	return rate, nil
}
