package chain

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
)

var (
	// ErrUnconfigured indicates no API key is configured for the upstream explorer.
	ErrUnconfigured = errors.New("chain: explorer API key not configured")
	// ErrRateLimited indicates the upstream explorer rejected the request.
	ErrRateLimited = errors.New("chain: upstream rate limited")
	// ErrUnsupportedChain indicates no explorer endpoint exists for the chain.
	ErrUnsupportedChain = errors.New("chain: unsupported chain")
)

// AddressTransaction is one on-chain movement reported by an explorer.
type AddressTransaction struct {
	Hash       string
	Direction  string // "in" when the tracked address receives, "out" when it spends
	Amount     decimal.Decimal
	Currency   string
	OccurredAt time.Time
}

// Client fetches transactions for an address from a block explorer.
type Client interface {
	AddressTransactions(ctx context.Context, chain, address string, since time.Time) ([]AddressTransaction, error)
}

// Endpoints maps chain names to explorer base URLs.
var defaultEndpoints = map[string]string{
	"ethereum": "https://api.etherscan.io/api",
	"neo":      "https://explorer.onegate.space/api",
	"bitcoin":  "https://blockstream.info/api",
}

// ExplorerConfig configures the explorer HTTP client.
type ExplorerConfig struct {
	APIKey    string
	Timeout   time.Duration
	Endpoints map[string]string // optional overrides, mainly for tests
}

// ExplorerClient talks to public block explorers over HTTP.
type ExplorerClient struct {
	apiKey    string
	endpoints map[string]string
	http      *http.Client
}

// NewExplorerClient constructs an explorer client. A client with an empty API
// key is still constructed; calls fail with ErrUnconfigured so the HTTP layer
// can answer 503 instead of the process refusing to boot.
func NewExplorerClient(cfg ExplorerConfig) *ExplorerClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	endpoints := make(map[string]string, len(defaultEndpoints))
	for chain, endpoint := range defaultEndpoints {
		endpoints[chain] = endpoint
	}
	for chain, endpoint := range cfg.Endpoints {
		endpoints[chain] = endpoint
	}

	return &ExplorerClient{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		endpoints: endpoints,
		http:      &http.Client{Timeout: timeout},
	}
}

type explorerTx struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Currency  string `json:"currency"`
	Timestamp int64  `json:"timestamp"`
}

type explorerResponse struct {
	Transactions []explorerTx `json:"transactions"`
	Error        string       `json:"error"`
}

// AddressTransactions fetches movements for an address, newest first as
// reported by the explorer.
func (c *ExplorerClient) AddressTransactions(ctx context.Context, chain, address string, since time.Time) ([]AddressTransaction, error) {
	if c == nil {
		return nil, errors.New("chain: client not initialised")
	}
	if c.apiKey == "" {
		return nil, ErrUnconfigured
	}

	chain = strings.ToLower(strings.TrimSpace(chain))
	endpoint, ok := c.endpoints[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, chain)
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errors.New("chain: address is required")
	}

	query := url.Values{}
	query.Set("address", address)
	query.Set("apikey", c.apiKey)
	if !since.IsZero() {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("chain: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chain: fetch %s transactions: %w", chain, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnconfigured
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chain: explorer returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload explorerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("chain: decode response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("chain: explorer error: %s", payload.Error)
	}

	transactions := make([]AddressTransaction, 0, len(payload.Transactions))
	for _, tx := range payload.Transactions {
		if tx.Hash == "" {
			continue
		}

		amount, err := decimal.NewFromString(tx.Value)
		if err != nil {
			continue
		}

		direction := "in"
		if strings.EqualFold(tx.From, address) {
			direction = "out"
		}

		occurredAt := time.Unix(tx.Timestamp, 0).UTC()
		if !since.IsZero() && occurredAt.Before(since) {
			continue
		}

		transactions = append(transactions, AddressTransaction{
			Hash:       tx.Hash,
			Direction:  direction,
			Amount:     amount,
			Currency:   strings.ToUpper(tx.Currency),
			OccurredAt: occurredAt,
		})
	}
	return transactions, nil
}
