package handler

import (
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/service"
)

// ClientHandler serves the public catalogue and direct purchases.
type ClientHandler struct {
	events   *service.EventService
	bookings *service.BookingService
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(events *service.EventService, bookings *service.BookingService) *ClientHandler {
	return &ClientHandler{events: events, bookings: bookings}
}

// ListEvents handles GET /api/events
// Returns a JSON array of all events ordered by date.
func (h *ClientHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		serverError(w, r, "list events", err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// Purchase handles POST /api/events/{id}/purchase
// The body is optional; without one a single ticket is bought.
func (h *ClientHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	var req model.PurchaseRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.bookings.Purchase(r.Context(), id, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSoldOut):
			writeError(w, http.StatusBadRequest, "Sold out")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
		case errors.Is(err, service.ErrInvalidInput):
			writeInvalid(w, err)
		default:
			serverError(w, r, "purchase", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
