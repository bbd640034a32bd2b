// Package repository implements all database queries for the ticket booking
// system. It uses sqlx over database/sql (no ORM) so the same queries run on
// PostgreSQL and SQLite.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/database"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
)

// ErrNotFound is returned when a requested event, pending booking or user
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrSoldOut is returned when an event has fewer tickets left than requested.
var ErrSoldOut = errors.New("sold out")

// ErrPendingNotFound is returned when a pending booking has already been
// consumed or never existed.
var ErrPendingNotFound = errors.New("pending booking not found")

// ErrInvalidQuantity is returned when a purchase asks for zero or fewer tickets.
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// ErrStorage wraps every failure of the underlying store.
var ErrStorage = errors.New("storage error")

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// EventRepository handles persistence for events and owns the ticket ledger.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event with all of its tickets available.
func (r *EventRepository) Create(ctx context.Context, name, date string, totalTickets int) (*model.Event, error) {
	event := &model.Event{
		Name:             name,
		Date:             date,
		TotalTickets:     totalTickets,
		AvailableTickets: totalTickets,
	}

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`INSERT INTO events (name, date, total_tickets, available_tickets)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`),
		event.Name, event.Date, event.TotalTickets, event.AvailableTickets,
	).Scan(&event.ID)
	if err != nil {
		return nil, storageError("insert event", err)
	}
	return event, nil
}

// List returns all events ordered by date.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := r.db.SelectContext(ctx, &events,
		`SELECT id, name, date, total_tickets, available_tickets
		 FROM events
		 ORDER BY date, id`,
	)
	if err != nil {
		return nil, storageError("list events", err)
	}
	return events, nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	var e model.Event
	err := r.db.GetContext(ctx, &e, r.db.Rebind(
		`SELECT id, name, date, total_tickets, available_tickets
		 FROM events WHERE id = ?`),
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageError("get event", err)
	}
	return &e, nil
}

// GetByName returns the event whose name matches exactly, or ErrNotFound.
// When several events share a name the oldest one wins.
func (r *EventRepository) GetByName(ctx context.Context, name string) (*model.Event, error) {
	var e model.Event
	err := r.db.GetContext(ctx, &e, r.db.Rebind(
		`SELECT id, name, date, total_tickets, available_tickets
		 FROM events WHERE name = ?
		 ORDER BY id
		 LIMIT 1`),
		name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageError("get event by name", err)
	}
	return &e, nil
}

// Delete removes an event, or returns ErrNotFound when nothing was deleted.
// Pending bookings naming the event are left alone.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM events WHERE id = ?`), id)
	if err != nil {
		return storageError("delete event", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("delete event rows affected", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Purchase atomically takes quantity tickets from an event.
//
// The read-check-write runs inside one exclusive transaction. On PostgreSQL
// SELECT ... FOR UPDATE locks only this event's row, so purchases for other
// events proceed in parallel while purchases for the same event queue behind
// the lock. SQLite connections begin IMMEDIATE transactions, which take the
// database write lock up front.
//
// ErrNotFound and ErrSoldOut are terminal: nothing is decremented and the
// transaction is rolled back. Any other failure rolls back and wraps ErrStorage.
func (r *EventRepository) Purchase(ctx context.Context, eventID int64, quantity int) (err error) {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageError("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.take(ctx, tx, eventID, quantity); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return storageError("commit transaction", err)
	}
	return nil
}

// PurchasePending is Purchase for a pending booking: the booking is deleted
// in the same transaction as the decrement, so a token pays for at most one
// purchase. A token that is already gone yields ErrPendingNotFound. On any
// failure the rollback restores the pending booking.
func (r *EventRepository) PurchasePending(ctx context.Context, token string, eventID int64, quantity int) (err error) {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageError("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// ── Step 0: consume the token. Concurrent confirmations block here. ───
	res, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM pending_bookings WHERE token = ?`), token)
	if err != nil {
		return storageError("consume pending booking", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("consume pending booking rows affected", err)
	}
	if n != 1 {
		return ErrPendingNotFound
	}

	if err = r.take(ctx, tx, eventID, quantity); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return storageError("commit transaction", err)
	}
	return nil
}

// take runs the ledger's lock, check and decrement inside tx.
func (r *EventRepository) take(ctx context.Context, tx *sqlx.Tx, eventID int64, quantity int) error {
	// ── Step 1: lock the event row and read what is left. ─────────────────
	var available int
	err := tx.QueryRowxContext(ctx, r.db.Rebind(
		`SELECT available_tickets FROM events WHERE id = ?`+r.lockClause()),
		eventID,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return storageError("lock event row", err)
	}

	// ── Step 2: refuse rather than decrement partially. ───────────────────
	if available < quantity {
		return ErrSoldOut
	}

	// ── Step 3: decrement within the same transaction. ────────────────────
	_, err = tx.ExecContext(ctx, r.db.Rebind(
		`UPDATE events SET available_tickets = available_tickets - ? WHERE id = ?`),
		quantity, eventID,
	)
	if err != nil {
		return storageError("decrement available_tickets", err)
	}
	return nil
}

func (r *EventRepository) lockClause() string {
	if database.DialectOf(r.db) == database.Postgres {
		return " FOR UPDATE"
	}
	return ""
}
