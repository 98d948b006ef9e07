// Package provider defines the payload shapes and error types shared by
// market-data provider clients. Payload fields are kept as the raw strings
// returned on the wire; numeric parsing is the transformer's job.
package provider

import (
	"errors"
	"fmt"
	"time"
)

// Quote is a provider-shaped snapshot of a symbol's current price. It is
// never persisted directly.
type Quote struct {
	Symbol        string
	Price         string
	Change        string
	ChangePercent string
	Volume        string
}

// Overview is a provider-shaped fundamentals payload. MarketCap uses the
// provider's suffix notation (e.g. "1.2B").
type Overview struct {
	Symbol      string
	MarketCap   string
	PERatio     string
	Week52High  string
	Week52Low   string
	Description string
}

// ErrSymbolNotFound is returned when the provider answers successfully but
// does not recognize the symbol.
var ErrSymbolNotFound = errors.New("symbol not known to provider")

// RateLimitError signals provider throttling. RetryAfter is an estimate of
// when calls may resume; zero when the provider gave no hint.
type RateLimitError struct {
	RetryAfter time.Time
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter.IsZero() {
		return "provider rate limit exceeded"
	}
	return fmt.Sprintf("provider rate limit exceeded, retry after %s", e.RetryAfter.Format(time.RFC3339))
}

// IsRateLimited reports whether err carries a rate-limit signal and, if so,
// returns the retry estimate.
func IsRateLimited(err error) (time.Time, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.RetryAfter, true
	}
	return time.Time{}, false
}
