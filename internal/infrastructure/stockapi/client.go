package stockapi

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stocklens/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// maxBodyBytes bounds how much of a payload is read
	maxBodyBytes = 8 << 20
	// maxErrorBodyBytes bounds how much of an error body is logged
	maxErrorBodyBytes = 512

	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 5
)

// ClientConfig holds configuration for the stock API client
type ClientConfig struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client fetches raw stock payloads from the stock API.
// Requests are rate limited and made once; callers decide about retries.
type Client struct {
	httpClient  *http.Client
	token       string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new stock API client
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		token:       config.Token,
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[StockAPI] "+format, args...)
	}
}

// FetchStock returns the raw stock payload for a SKU near a zipcode.
// Endpoint: GET {baseURL}/stock/{retailer}?sku=...&zip=...
func (c *Client) FetchStock(ctx context.Context, retailer domain.Retailer, sku, zipcode string) ([]byte, error) {
	params := url.Values{}
	params.Add("sku", sku)
	params.Add("zip", zipcode)
	reqURL := fmt.Sprintf("%s/stock/%s?%s", c.baseURL, url.PathEscape(string(retailer)), params.Encode())

	c.debugLog("FetchStock %s sku=%s zip=%s", retailer, sku, zipcode)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		log.Printf("[StockAPI] Rate limiter error: %v", err)
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		log.Printf("[StockAPI] Request error: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s sku %s", domain.ErrStockNotFound, retailer, sku)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
		log.Printf("[StockAPI] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrStockAPIFailure, resp.StatusCode)
	}

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrStockAPIFailure, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrStockAPIFailure)
	}

	c.debugLog("FetchStock %s sku=%s returned %d bytes", retailer, sku, len(body))
	return body, nil
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "StockLens/1.0")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStockAPIFailure, err)
	}

	return resp, nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
