package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/intent"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/service"
)

// AssistantHandler serves the two-step conversational booking flow: a
// free-text request is proposed first and only booked on confirmation.
type AssistantHandler struct {
	svc *service.BookingService
}

// NewAssistantHandler constructs an AssistantHandler.
func NewAssistantHandler(svc *service.BookingService) *AssistantHandler {
	return &AssistantHandler{svc: svc}
}

// Parse handles POST /api/parse
func (h *AssistantHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req model.ParseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := h.svc.Propose(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, intent.ErrUnrecognized):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "Could not parse request",
				"message": `I could not parse that. Try "Book two tickets for Jazz Night."`,
			})
		case errors.Is(err, service.ErrInvalidInput):
			writeInvalid(w, err)
		default:
			serverError(w, r, "parse", err)
		}
		return
	}

	switch in := p.Intent.(type) {
	case intent.Book:
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"intent":  "book",
			"event":   in.Event,
			"tickets": in.Tickets,
			"token":   p.Pending.Token,
			"message": fmt.Sprintf("I will book %s for %s. Do you confirm?", tickets(in.Tickets), in.Event),
		})
	case intent.List:
		events := p.Events
		if events == nil {
			events = []model.Event{}
		}
		msg := "Here are the upcoming events."
		if len(events) == 0 {
			msg = "There are no events right now."
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"intent":  "list",
			"events":  events,
			"message": msg,
		})
	}
}

// Confirm handles POST /api/confirm
// With a token it confirms that pending booking; without one, the most
// recent pending booking.
func (h *AssistantHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req model.ConfirmRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var (
		c   *service.Confirmation
		err error
	)
	if token := strings.TrimSpace(req.Token); token != "" {
		c, err = h.svc.Confirm(r.Context(), token)
	} else {
		c, err = h.svc.ConfirmLatest(r.Context())
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			writeError(w, http.StatusBadRequest, "Invalid or expired token")
		case errors.Is(err, service.ErrNoPendingBooking):
			writeError(w, http.StatusBadRequest, "No pending booking to confirm")
		case errors.Is(err, service.ErrEventNotFound):
			writeError(w, http.StatusBadRequest, "Event not found")
		case errors.Is(err, repository.ErrSoldOut):
			writeError(w, http.StatusBadRequest, "Sold out")
		default:
			serverError(w, r, "confirm", err)
		}
		return
	}

	if id, ok := IdentityFrom(r.Context()); ok {
		logrus.WithFields(logrus.Fields{
			"request_id": chimiddleware.GetReqID(r.Context()),
			"user_id":    id.UserID,
			"event_id":   c.EventID,
			"tickets":    c.Tickets,
		}).Info("booking confirmed for user")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"event_id": c.EventID,
		"event":    c.EventName,
		"tickets":  c.Tickets,
		"message":  fmt.Sprintf("Booked %s for %s.", tickets(c.Tickets), c.EventName),
	})
}

func tickets(n int) string {
	if n == 1 {
		return "1 ticket"
	}
	return fmt.Sprintf("%d tickets", n)
}
