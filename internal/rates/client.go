package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrQuoteUnavailable indicates the upstream returned no quote for the pair.
var ErrQuoteUnavailable = errors.New("rates: quote unavailable")

// ErrRateLimited indicates the upstream rejected the request.
var ErrRateLimited = errors.New("rates: upstream rate limited")

// QuoteClient fetches a spot quote for a currency pair.
type QuoteClient interface {
	Quote(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

const defaultQuoteEndpoint = "https://api.frankfurter.app/latest"

// HTTPQuoteClientConfig configures the upstream quote client.
type HTTPQuoteClientConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// HTTPQuoteClient fetches quotes from a public FX API. Concurrent requests
// for the same pair are coalesced into one upstream call.
type HTTPQuoteClient struct {
	endpoint string
	http     *http.Client
	group    singleflight.Group
}

// NewHTTPQuoteClient constructs a quote client.
func NewHTTPQuoteClient(cfg HTTPQuoteClientConfig) *HTTPQuoteClient {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultQuoteEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPQuoteClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type quoteResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Quote returns the latest rate for base/quote.
func (c *HTTPQuoteClient) Quote(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	if c == nil {
		return decimal.Zero, errors.New("rates: client not initialised")
	}

	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if base == "" || quote == "" {
		return decimal.Zero, errors.New("rates: base and quote are required")
	}

	key := base + "/" + quote
	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.fetch(ctx, base, quote)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return value.(decimal.Decimal), nil
}

func (c *HTTPQuoteClient) fetch(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("from", base)
	query.Set("to", quote)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rates: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rates: fetch %s/%s: %w", base, quote, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return decimal.Zero, ErrRateLimited
	case resp.StatusCode == http.StatusNotFound:
		return decimal.Zero, fmt.Errorf("%w: %s/%s", ErrQuoteUnavailable, base, quote)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("rates: upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("rates: decode response: %w", err)
	}

	rate, ok := payload.Rates[quote]
	if !ok || rate <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", ErrQuoteUnavailable, base, quote)
	}
	return decimal.NewFromFloat(rate), nil
}
