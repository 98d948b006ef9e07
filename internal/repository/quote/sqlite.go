// Package quote implements the persistent cache store on sqlite: one row per
// canonical symbol, replaced wholesale on every refresh.
package quote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "stockboard/internal/quote"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context, symbol string) (*domain.Record, error) {
	const query = `SELECT symbol, price, change, change_percent, volume, market_cap,
			pe_ratio, week52_high, week52_low, sentiment, source, created_at, updated_at
		FROM quotes WHERE symbol = ?`

	var (
		rec        domain.Record
		volume     sql.NullInt64
		marketCap  sql.NullFloat64
		peRatio    sql.NullFloat64
		week52High sql.NullFloat64
		week52Low  sql.NullFloat64
		sentiment  string
		createdStr string
		updatedStr string
	)

	err := r.db.QueryRowContext(ctx, query, symbol).Scan(
		&rec.Symbol, &rec.Price, &rec.Change, &rec.ChangePercent,
		&volume, &marketCap, &peRatio, &week52High, &week52Low,
		&sentiment, &rec.Source, &createdStr, &updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}

	if volume.Valid {
		rec.Volume = &volume.Int64
	}
	if marketCap.Valid {
		rec.MarketCap = &marketCap.Float64
	}
	if peRatio.Valid {
		rec.PERatio = &peRatio.Float64
	}
	if week52High.Valid {
		rec.Week52High = &week52High.Float64
	}
	if week52Low.Valid {
		rec.Week52Low = &week52Low.Float64
	}
	rec.Sentiment = domain.Sentiment(sentiment)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)

	return &rec, nil
}

// Put upserts the record keyed by symbol. On refresh every column is replaced
// except created_at, which keeps the first insert's value.
func (r *Repository) Put(ctx context.Context, rec domain.Record) error {
	const query = `INSERT INTO quotes (symbol, price, change, change_percent, volume,
			market_cap, pe_ratio, week52_high, week52_low, sentiment, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			change = excluded.change,
			change_percent = excluded.change_percent,
			volume = excluded.volume,
			market_cap = excluded.market_cap,
			pe_ratio = excluded.pe_ratio,
			week52_high = excluded.week52_high,
			week52_low = excluded.week52_low,
			sentiment = excluded.sentiment,
			source = excluded.source,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		rec.Symbol, rec.Price, rec.Change, rec.ChangePercent,
		nullInt(rec.Volume), nullFloat(rec.MarketCap), nullFloat(rec.PERatio),
		nullFloat(rec.Week52High), nullFloat(rec.Week52Low),
		string(rec.Sentiment), rec.Source,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put quote: %w", err)
	}
	return nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
