// Package symbol validates and canonicalizes stock ticker symbols.
package symbol

import (
	"regexp"
	"strings"
)

// tickerPattern matches 1 to 5 uppercase Latin letters.
var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// popular is a curated set of liquid symbols that can be trusted without a
// live round trip to the provider.
var popular = map[string]struct{}{
	"AAPL": {}, "MSFT": {}, "GOOGL": {}, "GOOG": {}, "AMZN": {},
	"META": {}, "NVDA": {}, "TSLA": {}, "BRK": {}, "JPM": {},
	"V": {}, "MA": {}, "UNH": {}, "JNJ": {}, "WMT": {},
	"PG": {}, "XOM": {}, "HD": {}, "KO": {}, "PEP": {},
	"BAC": {}, "DIS": {}, "NFLX": {}, "AMD": {}, "INTC": {},
	"CSCO": {}, "ORCL": {}, "CRM": {}, "ABBV": {}, "MRK": {},
}

// Classification is the result of validating a raw ticker.
type Classification struct {
	Valid        bool   `json:"valid"`
	Canonical    string `json:"canonical"`
	KnownPopular bool   `json:"knownPopular"`
}

// Classify trims and upper-cases the input, then checks it against the ticker
// pattern and the curated popular set. Pure, no I/O.
func Classify(raw string) Classification {
	canonical := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(canonical) {
		return Classification{Canonical: canonical}
	}
	_, known := popular[canonical]
	return Classification{Valid: true, Canonical: canonical, KnownPopular: known}
}
