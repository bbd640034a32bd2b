package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
)

// PendingBookingRepository stores booking intents awaiting confirmation.
// It never touches event inventory.
type PendingBookingRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewPendingBookingRepository constructs a PendingBookingRepository.
func NewPendingBookingRepository(db *sqlx.DB) *PendingBookingRepository {
	return &PendingBookingRepository{db: db, now: time.Now}
}

// Create inserts a new pending booking. Token uniqueness is the caller's
// responsibility; a colliding token fails like any other write.
func (r *PendingBookingRepository) Create(ctx context.Context, token, eventName string, tickets int, rawText string) (*model.PendingBooking, error) {
	p := &model.PendingBooking{
		Token:     token,
		EventName: eventName,
		Tickets:   tickets,
		RawText:   rawText,
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO pending_bookings (token, event_name, tickets, raw_text, created_at)
		 VALUES (?, ?, ?, ?, ?)`),
		p.Token, p.EventName, p.Tickets, p.RawText, p.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, storageError("insert pending booking", err)
	}
	return p, nil
}

// GetByToken returns the pending booking for token or ErrNotFound.
func (r *PendingBookingRepository) GetByToken(ctx context.Context, token string) (*model.PendingBooking, error) {
	row := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`SELECT token, event_name, tickets, raw_text, created_at
		 FROM pending_bookings WHERE token = ?`),
		token,
	)
	p, err := scanPending(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageError("get pending booking", err)
	}
	return p, nil
}

// GetMostRecent returns the newest pending booking whose event name matches
// an existing event case-insensitively. Bookings naming unknown events are
// skipped; ErrNotFound means none matched.
func (r *PendingBookingRepository) GetMostRecent(ctx context.Context) (*model.PendingBooking, error) {
	row := r.db.QueryRowxContext(ctx,
		`SELECT p.token, p.event_name, p.tickets, p.raw_text, p.created_at
		 FROM pending_bookings p
		 JOIN events e ON LOWER(e.name) = LOWER(p.event_name)
		 ORDER BY p.created_at DESC, p.seq DESC
		 LIMIT 1`,
	)
	p, err := scanPending(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageError("get most recent pending booking", err)
	}
	return p, nil
}

// Delete removes a pending booking. Deleting an unknown token is not an error.
func (r *PendingBookingRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM pending_bookings WHERE token = ?`), token)
	if err != nil {
		return storageError("delete pending booking", err)
	}
	return nil
}

// DeleteCreatedBefore removes pending bookings created before cutoff and
// reports how many were removed.
func (r *PendingBookingRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM pending_bookings WHERE created_at < ?`), cutoff.UnixMilli())
	if err != nil {
		return 0, storageError("expire pending bookings", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageError("expire pending bookings rows affected", err)
	}
	return n, nil
}

func scanPending(row *sqlx.Row) (*model.PendingBooking, error) {
	var (
		p         model.PendingBooking
		createdAt int64
	)
	if err := row.Scan(&p.Token, &p.EventName, &p.Tickets, &p.RawText, &createdAt); err != nil {
		return nil, err
	}
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &p, nil
}
