package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/service"
)

// AdminHandler serves the event catalogue administration API.
type AdminHandler struct {
	svc *service.EventService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *service.EventService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// CreateEvent handles POST /api/admin/events
// Creates an event whose tickets are all available.
func (h *AdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeInvalid(w, err)
			return
		}
		serverError(w, r, "create event", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": event.ID})
}

// ListEvents handles GET /api/admin/events
func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		serverError(w, r, "list events", err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// DeleteEvent handles DELETE /api/admin/events/{id}
func (h *AdminHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	if err := h.svc.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		serverError(w, r, "delete event", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Event %d deleted.", id),
	})
}
