// Package coingecko is a client of the CoinGecko public API: current prices,
// market charts and coin search.
package coingecko

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/cryptofolio/metrics"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the free public API.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Config holds the client configuration.
type Config struct {
	BaseURL   string        `yaml:"base_url" env:"BASE_URL"`
	APIKey    string        `yaml:"api_key" env:"API_KEY"` // optional demo key
	Currency  string        `yaml:"currency" env:"CURRENCY"`
	Timeout   time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" env:"RATE_LIMIT"` // requests per second, 0 is unlimited
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`   // for market charts and search, 0 disables the cache
	CacheDir  string        `yaml:"cache_dir" env:"CACHE_DIR"`
	Retry     RetryConfig   `yaml:"retry" envPrefix:"RETRY_"`
}

// DefaultConfig returns the configuration for the free public API.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Currency:  "cad",
		Timeout:   10 * time.Second,
		RateLimit: 0.5,
		CacheTTL:  time.Hour,
		Retry:     DefaultRetryConfig,
	}
}

// Client calls the API. It is safe for concurrent use.
type Client struct {
	baseURL  string
	apiKey   string
	currency string
	limiter  *rate.Limiter
	retry    RetryConfig
	log      *slog.Logger

	http   *http.Client // live data
	cached *http.Client // slow moving data
}

// New returns a client for cfg. A nil logger discards the logs.
func New(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Currency == "" {
		cfg.Currency = "cad"
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	c := &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		currency: strings.ToLower(cfg.Currency),
		limiter:  rate.NewLimiter(limit, 1),
		retry:    cfg.Retry,
		log:      log.With("component", "coingecko"),
		http:     &http.Client{Timeout: cfg.Timeout},
	}
	c.cached = c.http
	if cfg.CacheTTL > 0 {
		c.cached = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newDiskCache(http.DefaultTransport, cfg.CacheDir, cfg.CacheTTL, c.log),
		}
	}
	return c
}

// Currency returns the reporting currency, upper case.
func (c *Client) Currency() string { return strings.ToUpper(c.currency) }

// get performs a GET on the API path and returns the body of a 200 answer.
func (c *Client) get(ctx context.Context, client *http.Client, endpoint, path string, query url.Values) ([]byte, error) {
	addr := c.baseURL + path
	if len(query) > 0 {
		addr += "?" + query.Encode()
	}

	start := time.Now()
	defer func() { metrics.PriceLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	return withRetry(ctx, c.retry, func(attempt int) ([]byte, error) {
		if attempt > 0 {
			metrics.PriceRetries.WithLabelValues(endpoint).Inc()
			c.log.Warn("retrying price API request", "endpoint", endpoint, "attempt", attempt+1)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-cg-demo-api-key", c.apiKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			metrics.PriceRequests.WithLabelValues(endpoint, "error").Inc()
			return nil, err
		}
		defer resp.Body.Close()
		metrics.PriceRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return nil, newHTTPError(resp)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return nil, fmt.Errorf("cannot read %s answer: %w", path, err)
		}
		return body, nil
	})
}

// Ping checks that the API answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, c.http, "ping", "/ping", nil)
	return err
}
