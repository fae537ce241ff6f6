// Package etherscan fetches verified contract source from Etherscan-compatible
// block explorer APIs.
package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SourceExplorer = (*Client)(nil)

const (
	// DefaultBaseURL is the Etherscan mainnet API endpoint.
	DefaultBaseURL = "https://api.etherscan.io/api"

	// requestTimeout bounds one explorer call.
	requestTimeout = 15 * time.Second

	// maxResponseBytes bounds how much of a response is read.
	maxResponseBytes = 16 << 20

	statusOK = "1"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("etherscan API key is not set")

// Client calls the explorer's contract/getsourcecode action.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *RateLimiter
}

// response is the explorer's envelope. result is a list on success and a
// plain string describing the problem otherwise.
type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type sourceUnit struct {
	SourceCode   string `json:"SourceCode"`
	ContractName string `json:"ContractName"`
}

// NewClient creates an explorer client from settings.
func NewClient(settings domain.ExplorerSettings) *Client {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     settings.APIKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    NewRateLimiter(settings.RequestsPerSecond),
	}
}

// Name returns the explorer name.
func (c *Client) Name() string {
	return "etherscan"
}

// GetSourceCode returns the SourceCode field of the first result for address.
// Multi-file projects are returned exactly as the explorer encodes them.
func (c *Client) GetSourceCode(ctx context.Context, address string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("module", "contract")
	q.Set("action", "getsourcecode")
	q.Set("address", address)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	logger.Debug("Fetching source for %s from %s", address, c.baseURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRateLimit(retryAfter(resp.Header.Get("Retry-After")))
		}
		return "", fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	var env response
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if env.Status != statusOK {
		detail := resultText(env.Result)
		if strings.Contains(strings.ToLower(detail), "rate limit") {
			c.limiter.RecordRateLimit(0)
		}
		return "", fmt.Errorf("explorer status %q: %s: %s", env.Status, env.Message, detail)
	}

	var units []sourceUnit
	if err := json.Unmarshal(env.Result, &units); err != nil {
		return "", fmt.Errorf("decode result: %w", err)
	}
	if len(units) == 0 {
		return "", errors.New("explorer returned no source")
	}
	if len(units) > 1 {
		logger.Debug("Explorer returned %d source units, using the first", len(units))
	}
	return units[0].SourceCode, nil
}

// redact drops the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func resultText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
