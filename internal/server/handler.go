package server

import (
	"errors"
	"net/http"
	"strings"

	"stockboard/internal/apperror"
	"stockboard/internal/collector"
	"stockboard/internal/quote"
	"stockboard/internal/symbol"
)

type handler struct {
	quoteSvc  *quote.Service
	collector *collector.Collector
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getQuote serves the dashboard's lookup: cached, live, or stale-with-notice.
func (h *handler) getQuote(w http.ResponseWriter, r *http.Request) {
	res, err := h.quoteSvc.Get(r.Context(), r.PathValue("symbol"))
	if err != nil {
		var ae *apperror.AppError
		if errors.As(err, &ae) {
			writeError(w, ae.HTTPStatus(), ae.Message())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// classifySymbol validates a candidate ticker without touching cache or
// provider.
func (h *handler) classifySymbol(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, symbol.Classify(r.PathValue("symbol")))
}

// collect is the scheduled collector's entry point. An optional "symbols"
// query overrides the configured list.
func (h *handler) collect(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}

	summary := h.collector.Collect(r.Context(), symbols)
	writeJSON(w, http.StatusOK, summary)
}
