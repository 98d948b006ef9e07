package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/internal/provider"
)

// newTestClient returns a Client pointed at a server that dispatches on the
// "function" query parameter.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	ts := httptest.NewServer(handler)
	c := New("test-key",
		WithBaseURL(ts.URL),
		WithHTTPClient(ts.Client()),
		WithRequestsPerMinute(6000),
	)
	return ts, c
}

func TestGetQuote(t *testing.T) {
	ts, c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(`{"Global Quote": {
			"01. symbol": "AAPL",
			"05. price": "189.8400",
			"06. volume": "48087681",
			"09. change": "1.3500",
			"10. change percent": "0.7163%"
		}}`))
	})
	defer ts.Close()

	q, err := c.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "189.8400", q.Price)
	assert.Equal(t, "0.7163%", q.ChangePercent)
	assert.Equal(t, "48087681", q.Volume)
}

func TestGetQuote_LegacyFieldNames(t *testing.T) {
	ts, c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Global Quote": {
			"symbol": "MSFT",
			"price": "415.2000",
			"change": "-2.1000",
			"change percent": "-0.5030%",
			"volume": "17219824"
		}}`))
	})
	defer ts.Close()

	q, err := c.GetQuote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", q.Symbol)
	assert.Equal(t, "415.2000", q.Price)
}

func TestGetQuote_EmptyPayloadMeansUnknownSymbol(t *testing.T) {
	ts, c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Global Quote": {}}`))
	})
	defer ts.Close()

	_, err := c.GetQuote(context.Background(), "ZZZZZ")
	assert.ErrorIs(t, err, provider.ErrSymbolNotFound)
}

func TestGetQuote_RateLimitNoteOn200(t *testing.T) {
	ts, c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
	})
	defer ts.Close()

	_, err := c.GetQuote(context.Background(), "AAPL")
	retryAfter, limited := provider.IsRateLimited(err)
	require.True(t, limited)
	assert.False(t, retryAfter.IsZero())

	// The side channel must report limited without another network call.
	ts.Close()
	isLimited, until := c.RateLimited()
	assert.True(t, isLimited)
	assert.True(t, until.After(time.Now()))
}

func TestGetQuote_ServerErrorIsTransient(t *testing.T) {
	ts, c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer ts.Close()

	_, err := c.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	_, limited := provider.IsRateLimited(err)
	assert.False(t, limited)
	assert.False(t, errors.Is(err, provider.ErrSymbolNotFound))
}

func TestGetOverview(t *testing.T) {
	ts, c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OVERVIEW", r.URL.Query().Get("function"))
		_, _ = w.Write([]byte(`{
			"Symbol": "AAPL",
			"MarketCapitalization": "2.95T",
			"PERatio": "29.5",
			"52WeekHigh": "199.62",
			"52WeekLow": "164.08",
			"Description": "Apple Inc. designs and sells consumer electronics."
		}`))
	})
	defer ts.Close()

	ov, err := c.GetOverview(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "2.95T", ov.MarketCap)
	assert.Equal(t, "29.5", ov.PERatio)
}

func TestGetOverview_EmptyPayloadIsNotFound(t *testing.T) {
	ts, c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	defer ts.Close()

	_, err := c.GetOverview(context.Background(), "NOPE")
	assert.ErrorIs(t, err, provider.ErrSymbolNotFound)
}

func TestRateLimited_DefaultsToFalse(t *testing.T) {
	c := New("test-key")
	limited, _ := c.RateLimited()
	assert.False(t, limited)
}
