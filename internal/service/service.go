// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
)

// ErrInvalidInput matches every request validation failure.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError describes a rejected request in words fit for the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is makes a ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// EventService orchestrates administrative event operations.
type EventService struct {
	events *repository.EventRepository
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events *repository.EventRepository) *EventService {
	return &EventService{events: events}
}

// CreateEvent validates the request and delegates to the repository.
// New events start with every ticket available.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Date = strings.TrimSpace(req.Date)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if *req.TotalTickets > model.MaxTickets {
		return nil, invalid("total_tickets cannot exceed 100,000")
	}
	return s.events.Create(ctx, req.Name, req.Date, *req.TotalTickets)
}

// ListEvents returns all events ordered by date.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	return s.events.GetByID(ctx, id)
}

// DeleteEvent removes an event. Pending bookings that name it stay behind
// and will fail to resolve at confirmation.
func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	return s.events.Delete(ctx, id)
}

// validateStruct runs struct validation and folds the result into a single
// ValidationError that names the offending JSON fields.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalid("%v", err)
	}

	var missing, malformed []string
	for _, fe := range verrs {
		name := fe.Field()
		if fe.Tag() == "required" {
			missing = append(missing, name)
		} else {
			malformed = append(malformed, name)
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(missing, ", "))
	}
	if len(malformed) > 0 {
		parts = append(parts, "Invalid fields: "+strings.Join(malformed, ", "))
	}
	return invalid("%s", strings.Join(parts, "; "))
}
