// Package alphavantage implements a provider client for the Alpha Vantage
// query-string API (GLOBAL_QUOTE and OVERVIEW functions). The client is a
// thin transport: it paces and classifies calls but never retries — retry
// policy belongs to the caller.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"stockboard/internal/provider"
)

const (
	defaultBaseURL = "https://www.alphavantage.co/query"
	defaultTimeout = 15 * time.Second

	// rateLimitCooldown is how long the client reports itself limited after
	// the provider signals throttling. The free tier resets per minute and
	// sends no Retry-After header.
	rateLimitCooldown = time.Minute
)

// Client fetches quotes and fundamentals from Alpha Vantage.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter

	mu           sync.Mutex
	limitedUntil time.Time
}

// New creates a Client with the given options applied.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Every(12*time.Second), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, e.g. to point at a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets the HTTP client. The client's timeout bounds every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithRequestsPerMinute paces outgoing calls to stay under the plan's quota.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			n = 1
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// RateLimited reports whether the provider signalled throttling within the
// cooldown window, along with the estimated reset time. Callers use this to
// skip network calls that would certainly fail.
func (c *Client) RateLimited() (bool, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Now().Before(c.limitedUntil) {
		return true, c.limitedUntil
	}
	return false, time.Time{}
}

func (c *Client) markLimited() *provider.RateLimitError {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limitedUntil = time.Now().Add(rateLimitCooldown)
	return &provider.RateLimitError{RetryAfter: c.limitedUntil}
}

// globalQuoteV1 is the current GLOBAL_QUOTE field naming with ordinal key
// prefixes.
type globalQuoteV1 struct {
	Symbol        string `json:"01. symbol"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

// globalQuoteV2 is the older naming without prefixes, still seen on some
// endpoints.
type globalQuoteV2 struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	Volume        string `json:"volume"`
	Change        string `json:"change"`
	ChangePercent string `json:"change percent"`
}

type quoteEnvelope struct {
	GlobalQuote  json.RawMessage `json:"Global Quote"`
	Note         string          `json:"Note"`
	Information  string          `json:"Information"`
	ErrorMessage string          `json:"Error Message"`
}

// GetQuote fetches the current quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (provider.Quote, error) {
	body, err := c.get(ctx, "GLOBAL_QUOTE", symbol)
	if err != nil {
		return provider.Quote{}, err
	}

	var env quoteEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return provider.Quote{}, fmt.Errorf("parse quote response: %w", err)
	}
	if err := c.classify(env.Note, env.Information, env.ErrorMessage, symbol); err != nil {
		return provider.Quote{}, err
	}

	// The quote payload has shipped under two field namings; try the current
	// one first, then fall back to the legacy shape.
	var v1 globalQuoteV1
	if err := json.Unmarshal(env.GlobalQuote, &v1); err == nil && v1.Price != "" {
		return provider.Quote{
			Symbol:        v1.Symbol,
			Price:         v1.Price,
			Change:        v1.Change,
			ChangePercent: v1.ChangePercent,
			Volume:        v1.Volume,
		}, nil
	}
	var v2 globalQuoteV2
	if err := json.Unmarshal(env.GlobalQuote, &v2); err == nil && v2.Price != "" {
		return provider.Quote{
			Symbol:        v2.Symbol,
			Price:         v2.Price,
			Change:        v2.Change,
			ChangePercent: v2.ChangePercent,
			Volume:        v2.Volume,
		}, nil
	}

	// An empty "Global Quote" object on HTTP 200 means the symbol is unknown.
	return provider.Quote{}, fmt.Errorf("quote %s: %w", symbol, provider.ErrSymbolNotFound)
}

type overviewPayload struct {
	Symbol       string `json:"Symbol"`
	MarketCap    string `json:"MarketCapitalization"`
	PERatio      string `json:"PERatio"`
	Week52High   string `json:"52WeekHigh"`
	Week52Low    string `json:"52WeekLow"`
	Description  string `json:"Description"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// GetOverview fetches company fundamentals for a symbol. An empty payload on
// a successful response means the provider does not know the symbol.
func (c *Client) GetOverview(ctx context.Context, symbol string) (*provider.Overview, error) {
	body, err := c.get(ctx, "OVERVIEW", symbol)
	if err != nil {
		return nil, err
	}

	var p overviewPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("parse overview response: %w", err)
	}
	if err := c.classify(p.Note, p.Information, p.ErrorMessage, symbol); err != nil {
		return nil, err
	}
	if p.Symbol == "" {
		return nil, fmt.Errorf("overview %s: %w", symbol, provider.ErrSymbolNotFound)
	}

	return &provider.Overview{
		Symbol:      p.Symbol,
		MarketCap:   p.MarketCap,
		PERatio:     p.PERatio,
		Week52High:  p.Week52High,
		Week52Low:   p.Week52Low,
		Description: p.Description,
	}, nil
}

// get performs a single paced GET against the query API and returns the raw
// body. Any non-2xx status is a transient failure.
func (c *Client) get(ctx context.Context, function, symbol string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage %s %s: %w", function, symbol, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusTooManyRequests {
		return nil, c.markLimited()
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("alphavantage %s %s: HTTP %d", function, symbol, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// classify inspects the provider's in-body status fields. Alpha Vantage
// reports throttling as a "Note" or "Information" message on HTTP 200.
func (c *Client) classify(note, information, errorMessage, symbol string) error {
	for _, msg := range []string{note, information} {
		if msg == "" {
			continue
		}
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "call frequency") || strings.Contains(lower, "rate limit") {
			slog.Warn("alphavantage: rate limited", "symbol", symbol, "message", msg)
			return c.markLimited()
		}
	}
	if errorMessage != "" {
		return fmt.Errorf("alphavantage error for %s: %s", symbol, errorMessage)
	}
	return nil
}
