package quote

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"stockboard/internal/provider"
)

// ErrMalformedPayload marks a provider response whose mandatory fields could
// not be parsed. Optional fields never produce this error; they degrade to nil.
var ErrMalformedPayload = errors.New("malformed provider payload")

// marketCapMultipliers expands the provider's suffix notation ("1.2B").
var marketCapMultipliers = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
	'T': 1e12,
}

// Normalize converts provider payloads into a canonical Record. Price and
// change-percent are mandatory; everything else is best effort. The overview
// may be nil when the fundamentals call failed.
func Normalize(q provider.Quote, ov *provider.Overview, symbol string, now time.Time) (Record, error) {
	price, err := parseFinite(q.Price)
	if err != nil {
		return Record{}, fmt.Errorf("price %q: %w", q.Price, ErrMalformedPayload)
	}
	changePct, err := parseFinite(strings.TrimSuffix(strings.TrimSpace(q.ChangePercent), "%"))
	if err != nil {
		return Record{}, fmt.Errorf("change percent %q: %w", q.ChangePercent, ErrMalformedPayload)
	}

	change, err := parseFinite(q.Change)
	if err != nil {
		// Derive from price when the provider omits the absolute change,
		// rounded to the same precision the price was quoted at.
		change = roundTo(price*changePct/100, decimalsOf(q.Price))
	}

	rec := Record{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		Volume:        optionalInt(q.Volume),
		Sentiment:     SentimentNeutral,
		Source:        string(SourceProvider),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if ov != nil {
		rec.MarketCap = ParseMarketCap(ov.MarketCap)
		rec.PERatio = optionalFloat(ov.PERatio)
		rec.Week52High = optionalFloat(ov.Week52High)
		rec.Week52Low = optionalFloat(ov.Week52Low)
		rec.Sentiment = ClassifySentiment(ov.Description)
	}
	return rec, nil
}

// ParseMarketCap expands suffix notation to a raw value. Placeholder values
// and unrecognized suffixes yield nil rather than an error.
func ParseMarketCap(raw string) *float64 {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "", "N/A", "NONE", "-":
		return nil
	}

	mult := 1.0
	if m, ok := marketCapMultipliers[s[len(s)-1]]; ok {
		mult = m
		s = s[:len(s)-1]
	}
	v, err := parseFinite(s)
	if err != nil || v < 0 {
		return nil
	}
	v *= mult
	return &v
}

// positiveWords and negativeWords drive the best-effort polarity heuristic
// over overview free text.
var (
	positiveWords = []string{
		"growth", "growing", "leading", "leader", "strong", "innovative",
		"profitable", "record", "expanding", "outperform", "gain",
	}
	negativeWords = []string{
		"decline", "declining", "loss", "losses", "lawsuit", "bankruptcy",
		"falling", "weak", "downturn", "underperform", "layoff",
	}
)

// ClassifySentiment maps free text to exactly one polarity. It is total:
// unclassifiable input is neutral, never an error.
func ClassifySentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	score := 0
	for _, w := range positiveWords {
		score += strings.Count(lower, w)
	}
	for _, w := range negativeWords {
		score -= strings.Count(lower, w)
	}
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// parseFinite parses a decimal string, rejecting NaN and infinities so they
// never reach the store.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func optionalFloat(s string) *float64 {
	v, err := parseFinite(s)
	if err != nil {
		return nil
	}
	return &v
}

func optionalInt(s string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// decimalsOf counts the decimal places the provider quoted a number at.
func decimalsOf(s string) int {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(strings.TrimSpace(s)) - i - 1
	}
	return 0
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow10(places)
	return math.Round(v*pow) / pow
}
