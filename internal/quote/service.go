package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"stockboard/internal/apperror"
	"stockboard/internal/provider"
	"stockboard/internal/symbol"
)

// ProviderClient is the live market-data source. Implementations are thin
// transports: no retries, typed errors, a queryable rate-limit side channel.
type ProviderClient interface {
	GetQuote(ctx context.Context, symbol string) (provider.Quote, error)
	GetOverview(ctx context.Context, symbol string) (*provider.Overview, error)
	RateLimited() (bool, time.Time)
}

// Service orchestrates cache reads, freshness checks, deduplicated live
// fetches, and stale fallback for symbol lookups.
type Service struct {
	repo   Repository
	client ProviderClient

	ttl          time.Duration
	fetchTimeout time.Duration
	flight       *singleflight.Group
	now          func() time.Time
}

func NewService(repo Repository, client ProviderClient, opts ...ServiceOption) *Service {
	s := &Service{
		repo:         repo,
		client:       client,
		ttl:          5 * time.Minute,
		fetchTimeout: 15 * time.Second,
		flight:       &singleflight.Group{},
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTTL sets how long a stored record is served without revalidation.
func WithTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.ttl = ttl }
}

// WithFetchTimeout bounds a shared live fetch (quote + overview + persist).
func WithFetchTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.fetchTimeout = d }
}

// WithFlightGroup injects the in-flight fetch registry, e.g. one shared
// across services or inspected by tests.
func WithFlightGroup(g *singleflight.Group) ServiceOption {
	return func(s *Service) { s.flight = g }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// Get returns current data for a symbol: fresh cache when possible, otherwise
// a deduplicated live fetch, otherwise stale data annotated with the failure,
// otherwise a typed unavailability error.
func (s *Service) Get(ctx context.Context, rawSymbol string) (*Result, error) {
	cls := symbol.Classify(rawSymbol)
	if !cls.Valid {
		return nil, apperror.New(apperror.InvalidSymbol,
			fmt.Sprintf("invalid symbol %q: want 1-5 letters", rawSymbol))
	}
	sym := cls.Canonical

	cached, err := s.repo.Get(ctx, sym)
	if err != nil {
		// A broken cache read degrades to a miss; the fetch path can still
		// serve the request.
		slog.Error("quote: cache read failed", "symbol", sym, "error", err)
		cached = nil
	}

	if cached != nil && Fresh(cached.UpdatedAt, s.now(), s.ttl) {
		return &Result{Quote: *cached, Source: SourceCache}, nil
	}

	rec, err := s.fetch(ctx, sym)
	if err == nil {
		return &Result{Quote: *rec, Source: SourceProvider}, nil
	}
	return s.fallback(sym, cached, err)
}

// fetch runs one live refresh per symbol regardless of concurrent callers.
// Waiters attach to the in-flight call and share its outcome; the registry
// entry is dropped when the call completes, so later waves start fresh.
func (s *Service) fetch(ctx context.Context, sym string) (*Record, error) {
	v, err, shared := s.flight.Do(sym, func() (any, error) {
		// The fetch is detached from the triggering request so one waiter's
		// cancellation cannot abort a call other waiters are attached to. Its
		// own budget still bounds it.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return s.refresh(fctx, sym)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("quote: attached to in-flight fetch", "symbol", sym)
	}
	return v.(*Record), nil
}

// refresh performs the provider round trips, normalization, and persistence
// for a single symbol.
func (s *Service) refresh(ctx context.Context, sym string) (*Record, error) {
	if limited, until := s.client.RateLimited(); limited {
		// Short-circuit inside the cooldown window without network cost.
		return nil, &provider.RateLimitError{RetryAfter: until}
	}

	q, err := s.client.GetQuote(ctx, sym)
	if err != nil {
		return nil, err
	}

	// Fundamentals are best effort: a failed overview never aborts a
	// successful quote.
	ov, err := s.client.GetOverview(ctx, sym)
	if err != nil {
		slog.Warn("quote: overview fetch failed", "symbol", sym, "error", err)
		ov = nil
	}

	rec, err := Normalize(q, ov, sym, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Put(ctx, rec); err != nil {
		// Persistence failure never downgrades a successful fetch into a
		// user-visible error.
		slog.Error("quote: cache write failed", "symbol", sym, "error", err)
	}
	return &rec, nil
}

// fallback decides between stale data and a typed unavailability error once a
// live fetch has failed.
func (s *Service) fallback(sym string, cached *Record, cause error) (*Result, error) {
	if errors.Is(cause, ErrMalformedPayload) {
		return nil, apperror.Wrap(apperror.MalformedPayload,
			fmt.Sprintf("provider returned unparseable data for %s", sym), cause)
	}

	if cached != nil {
		slog.Warn("quote: serving stale data", "symbol", sym, "age", time.Since(cached.UpdatedAt).String(), "cause", cause)
		return &Result{Quote: *cached, Source: SourceStale, Stale: true, Notice: noticeFor(cause)}, nil
	}

	if retryAfter, ok := provider.IsRateLimited(cause); ok {
		msg := "provider rate limited and no cached data available"
		if !retryAfter.IsZero() {
			msg = fmt.Sprintf("%s, retry after %s", msg, retryAfter.Format(time.RFC3339))
		}
		return nil, apperror.Wrap(apperror.RateLimited, msg, cause)
	}
	if errors.Is(cause, provider.ErrSymbolNotFound) {
		return nil, apperror.Wrap(apperror.NotFound,
			fmt.Sprintf("symbol %s not known to provider", sym), cause)
	}
	return nil, apperror.Wrap(apperror.Unavailable,
		fmt.Sprintf("no data available for %s: %s", sym, cause), cause)
}

func noticeFor(cause error) *Notice {
	if retryAfter, ok := provider.IsRateLimited(cause); ok {
		n := &Notice{
			Reason:  "rate_limited",
			Message: "showing last known data, provider rate limited",
		}
		if !retryAfter.IsZero() {
			n.RetryAfter = &retryAfter
		}
		return n
	}
	if errors.Is(cause, provider.ErrSymbolNotFound) {
		return &Notice{Reason: "not_found", Message: "showing last known data, provider no longer recognizes the symbol"}
	}
	return &Notice{Reason: "transient_error", Message: "showing last known data, provider unreachable"}
}
