package server

import (
	"net/http"

	"stockboard/internal/collector"
	"stockboard/internal/quote"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(quoteSvc *quote.Service, coll *collector.Collector) http.Handler {
	return newMux(quoteSvc, coll)
}

func newMux(quoteSvc *quote.Service, coll *collector.Collector) http.Handler {
	h := &handler{
		quoteSvc:  quoteSvc,
		collector: coll,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/quotes/{symbol}", h.getQuote)
	mux.HandleFunc("GET /api/v1/symbols/{symbol}", h.classifySymbol)
	mux.HandleFunc("POST /api/v1/collect", h.collect)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
