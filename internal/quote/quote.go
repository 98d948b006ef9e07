// Package quote holds the canonical market-data record, the provider payload
// transformer, the freshness policy, and the orchestrating service that
// decides between cached, live, and stale data for a symbol.
package quote

import (
	"context"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Record is the normalized, provider-agnostic representation of a symbol's
// price and fundamentals. Optional fields are nil when the provider did not
// supply a usable value.
type Record struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        *int64    `json:"volume,omitempty"`
	MarketCap     *float64  `json:"marketCap,omitempty"`
	PERatio       *float64  `json:"peRatio,omitempty"`
	Week52High    *float64  `json:"week52High,omitempty"`
	Week52Low     *float64  `json:"week52Low,omitempty"`
	Sentiment     Sentiment `json:"sentiment"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Source describes how a lookup was served.
type Source string

const (
	SourceCache    Source = "cache"
	SourceProvider Source = "provider"
	SourceStale    Source = "stale"
)

// Notice annotates a stale result with why live data could not be served.
type Notice struct {
	Reason     string     `json:"reason"`
	Message    string     `json:"message"`
	RetryAfter *time.Time `json:"retryAfter,omitempty"`
}

// Result is what the dashboard consumes: the record plus provenance.
type Result struct {
	Quote  Record  `json:"quote"`
	Source Source  `json:"source"`
	Stale  bool    `json:"stale"`
	Notice *Notice `json:"notice,omitempty"`
}

// Repository is the persistent cache store, one record per canonical symbol.
// Get returns (nil, nil) on a miss; Put replaces the stored record wholesale.
type Repository interface {
	Get(ctx context.Context, symbol string) (*Record, error)
	Put(ctx context.Context, rec Record) error
}
