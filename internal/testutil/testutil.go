// Package testutil provides shared test helpers.
//
// [NewDB] opens a fresh SQLite database in the test's temporary directory
// with the schema applied. All helpers fail the test on error rather than
// returning it, since setup failures are not recoverable.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/database"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
)

// NewDB opens an initialised SQLite database that is closed when the test ends.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.InitialiseDB(ctx, db); err != nil {
		t.Fatalf("initialise test database: %v", err)
	}
	return db
}

// InsertEvent adds an event with the given inventory directly, bypassing
// the repositories, and returns it.
func InsertEvent(t testing.TB, db *sqlx.DB, name string, total, available int) model.Event {
	t.Helper()
	e := model.Event{Name: name, Date: "2030-01-01", TotalTickets: total, AvailableTickets: available}
	err := db.QueryRowx(db.Rebind(
		`INSERT INTO events (name, date, total_tickets, available_tickets) VALUES (?, ?, ?, ?) RETURNING id`),
		e.Name, e.Date, e.TotalTickets, e.AvailableTickets,
	).Scan(&e.ID)
	if err != nil {
		t.Fatalf("insert event %q: %v", name, err)
	}
	return e
}

// Available reads the current available_tickets of an event.
func Available(t testing.TB, db *sqlx.DB, eventID int64) int {
	t.Helper()
	var n int
	if err := db.Get(&n, db.Rebind(`SELECT available_tickets FROM events WHERE id = ?`), eventID); err != nil {
		t.Fatalf("read available tickets for event %d: %v", eventID, err)
	}
	return n
}
