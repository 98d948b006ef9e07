// Package collector refreshes a configured set of symbols on a timer, the
// batch counterpart to per-request quote lookups. Each run is tagged and
// summarized; retry cadence is whatever the scheduler (internal ticker or an
// external cron hitting the collect endpoint) decides.
package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stockboard/internal/quote"
)

// QuoteGetter is the orchestrator entry point the collector drives.
type QuoteGetter interface {
	Get(ctx context.Context, symbol string) (*quote.Result, error)
}

// SymbolError reports one symbol that could not be refreshed with live data.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// Summary describes one collection run.
type Summary struct {
	RunID     string        `json:"runId"`
	StartedAt time.Time     `json:"startedAt"`
	Collected int           `json:"collected"`
	Errors    []SymbolError `json:"errors,omitempty"`
}

// Collector runs batch refreshes over a symbol list with bounded concurrency.
type Collector struct {
	svc      QuoteGetter
	symbols  []string
	interval time.Duration
	workers  int
	notify   chan struct{}
}

func New(svc QuoteGetter, symbols []string, interval time.Duration, workers int) *Collector {
	if workers <= 0 {
		workers = 1
	}
	return &Collector{
		svc:      svc,
		symbols:  symbols,
		interval: interval,
		workers:  workers,
		notify:   make(chan struct{}, 1),
	}
}

// Notify triggers a collection run outside the regular schedule. Non-blocking.
func (c *Collector) Notify() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Run collects on every tick until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) {
	if c.interval <= 0 || len(c.symbols) == 0 {
		slog.Info("collector: periodic runs disabled")
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.notify:
		}
		c.Collect(ctx, c.symbols)
	}
}

// Collect refreshes the given symbols concurrently and returns a run summary.
// Symbols proceed independently; one failure never stops the rest. A result
// served stale counts as an error here, since the point of a run is fresh
// data.
func (c *Collector) Collect(ctx context.Context, symbols []string) Summary {
	summary := Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	if len(symbols) == 0 {
		symbols = c.symbols
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, sym := range symbols {
		g.Go(func() error {
			res, err := c.svc.Get(ctx, sym)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Errors = append(summary.Errors, SymbolError{Symbol: sym, Error: err.Error()})
			case res.Stale:
				summary.Errors = append(summary.Errors, SymbolError{Symbol: sym, Error: res.Notice.Message})
			default:
				summary.Collected++
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("collector: run finished",
		"runId", summary.RunID,
		"symbols", len(symbols),
		"collected", summary.Collected,
		"errors", len(summary.Errors),
		"duration", time.Since(summary.StartedAt).String(),
	)
	return summary
}
