// Package model defines the core domain types for the ticket booking system.
package model

import "time"

// MaxTickets caps the inventory of one event and the size of one booking.
const MaxTickets = 100_000

// Event is a ticketed occasion with finite inventory.
type Event struct {
	ID               int64  `json:"id" db:"id"`
	Name             string `json:"name" db:"name"`
	Date             string `json:"date" db:"date"`
	TotalTickets     int    `json:"total_tickets" db:"total_tickets"`
	AvailableTickets int    `json:"available_tickets" db:"available_tickets"`
}

// PendingBooking is an unconfirmed booking intent addressed by an opaque
// token. EventName is resolved to an Event only at confirmation time.
type PendingBooking struct {
	Token     string    `json:"token"`
	EventName string    `json:"event_name"`
	Tickets   int       `json:"tickets"`
	RawText   string    `json:"raw_text"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an account allowed to purchase and confirm bookings.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Name         string `json:"name" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	TotalTickets *int   `json:"total_tickets" validate:"required,gte=0"`
}

// PurchaseRequest is the optional payload of a direct purchase.
type PurchaseRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CredentialsRequest is the payload for registering and logging in.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ParseRequest carries a free-text booking request.
type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

// ConfirmRequest confirms a pending booking. An empty token confirms the
// most recent pending booking.
type ConfirmRequest struct {
	Token string `json:"token"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PurchaseResult summarises the outcome of a single purchase attempt.
// Used in the concurrent test harness.
type PurchaseResult struct {
	Attempt int
	Success bool
	Error   error
}
