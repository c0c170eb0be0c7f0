// internal/ledger/ledger.go
//
// Package ledger keeps an audit trail of payment attempts in Postgres. The
// verified-but-unsubmitted rows are what support works from when a booking
// submission was rejected after a settled payment. The ledger is optional:
// a nil *Ledger is a no-op.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/tour-booking-gateway/internal/gateway"
)

type Ledger struct {
	pool *pgxpool.Pool
}

// Connect opens and pings a pgx pool.
func Connect(ctx context.Context, dsn string) (*Ledger, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse ledger dsn: %w", err)
	}
	cfg.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect ledger: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}
	return &Ledger{pool: pool}, nil
}

func (l *Ledger) Close() {
	if l != nil && l.pool != nil {
		l.pool.Close()
	}
}

// RecordAttempt upserts the attempt row keyed by reference. Called on every
// state transition so the trail shows the full traversal.
func (l *Ledger) RecordAttempt(ctx context.Context, sessionID string, att *gateway.Attempt) error {
	if l == nil {
		return nil
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO payment_attempts (reference, session_id, amount_minor, currency, state, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (reference) DO UPDATE SET state = EXCLUDED.state`,
		att.Reference, sessionID, att.AmountMinor, att.Currency, string(att.State), att.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// MarkVerified stamps the settled attempt with the verified amount.
func (l *Ledger) MarkVerified(ctx context.Context, reference string, amountMinor int64, currency string) error {
	if l == nil {
		return nil
	}
	_, err := l.pool.Exec(ctx,
		`UPDATE payment_attempts
		 SET state = 'settled', verified_at = now(), verified_amount = $2, verified_currency = $3
		 WHERE reference = $1`,
		reference, amountMinor, currency,
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// MarkSubmitted links the attempt to its booking record.
func (l *Ledger) MarkSubmitted(ctx context.Context, reference, bookingID string) error {
	if l == nil {
		return nil
	}
	_, err := l.pool.Exec(ctx,
		`UPDATE payment_attempts SET submitted_at = now(), booking_id = $2 WHERE reference = $1`,
		reference, bookingID,
	)
	if err != nil {
		return fmt.Errorf("mark submitted: %w", err)
	}
	return nil
}

type AttemptRow struct {
	Reference   string
	SessionID   string
	AmountMinor int64
	Currency    string
	State       string
	VerifiedAt  *time.Time
	SubmittedAt *time.Time
	BookingID   *string
}

// ListUnsubmitted returns verified attempts that never produced a booking,
// oldest first. Support retries submission from these.
func (l *Ledger) ListUnsubmitted(ctx context.Context) ([]AttemptRow, error) {
	if l == nil {
		return nil, nil
	}
	rows, err := l.pool.Query(ctx,
		`SELECT reference, session_id, amount_minor, currency, state, verified_at, submitted_at, booking_id
		 FROM payment_attempts
		 WHERE verified_at IS NOT NULL AND submitted_at IS NULL
		 ORDER BY verified_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list unsubmitted: %w", err)
	}
	defer rows.Close()

	var out []AttemptRow
	for rows.Next() {
		var a AttemptRow
		if err := rows.Scan(&a.Reference, &a.SessionID, &a.AmountMinor, &a.Currency,
			&a.State, &a.VerifiedAt, &a.SubmittedAt, &a.BookingID); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
