package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/intent"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
)

// ErrInvalidToken is returned when a confirmation names no pending booking.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrNoPendingBooking is returned when there is no pending booking to
// confirm without a token.
var ErrNoPendingBooking = errors.New("no pending booking to confirm")

// ErrEventNotFound is returned when a pending booking names an event that
// does not exist (any more).
var ErrEventNotFound = errors.New("event not found")

// State is a step of the confirmation protocol.
type State string

const (
	StateProposed  State = "proposed"
	StateResolving State = "resolving"
	StateCommitted State = "committed"
	StateRejected  State = "rejected"
	StateInvalid   State = "invalid"
)

// Proposal is the result of reading a free-text request. For a booking it
// carries the stored pending booking; for a list request, the events.
type Proposal struct {
	Intent  intent.Intent
	Pending *model.PendingBooking
	Events  []model.Event
}

// Confirmation describes a committed booking.
type Confirmation struct {
	State     State
	Token     string
	EventID   int64
	EventName string
	Tickets   int
}

// BookingService runs direct purchases and the propose/confirm flow of the
// booking assistant.
type BookingService struct {
	events   *repository.EventRepository
	pending  *repository.PendingBookingRepository
	resolver *intent.Resolver
	newToken func() string
	log      *logrus.Entry
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(
	events *repository.EventRepository,
	pending *repository.PendingBookingRepository,
	resolver *intent.Resolver,
) *BookingService {
	return &BookingService{
		events:   events,
		pending:  pending,
		resolver: resolver,
		newToken: uuid.NewString,
		log:      logrus.WithField("component", "booking"),
	}
}

// Purchase buys quantity tickets for an event, bypassing the pending
// booking registry. A zero quantity means one ticket.
func (s *BookingService) Purchase(ctx context.Context, eventID int64, quantity int) error {
	if err := validateStruct(model.PurchaseRequest{Quantity: quantity}); err != nil {
		return err
	}
	if quantity == 0 {
		quantity = 1
	}

	err := s.events.Purchase(ctx, eventID, quantity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrSoldOut) {
			return err
		}
		return fmt.Errorf("purchase tickets: %w", err)
	}

	s.log.WithFields(logrus.Fields{"event_id": eventID, "tickets": quantity}).Info("tickets purchased")
	return nil
}

// Propose interprets text. A booking request is stored as a pending
// booking under a fresh token; inventory is not reserved. A list request
// returns the current events.
func (s *BookingService) Propose(ctx context.Context, text string) (*Proposal, error) {
	text = strings.TrimSpace(text)
	if err := validateStruct(model.ParseRequest{Text: text}); err != nil {
		return nil, err
	}

	in, err := s.resolver.Resolve(ctx, text)
	if err != nil {
		return nil, err
	}

	switch v := in.(type) {
	case intent.Book:
		p, err := s.pending.Create(ctx, s.newToken(), v.Event, v.Tickets, text)
		if err != nil {
			return nil, fmt.Errorf("store pending booking: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"token":   p.Token,
			"event":   p.EventName,
			"tickets": p.Tickets,
			"state":   StateProposed,
		}).Info("booking proposed")
		return &Proposal{Intent: v, Pending: p}, nil

	case intent.List:
		events, err := s.events.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		return &Proposal{Intent: v, Events: events}, nil

	default:
		return nil, intent.ErrUnrecognized
	}
}

// Confirm commits the pending booking addressed by token.
//
// Only a committed booking removes the pending record, and it is removed in
// the same transaction as the purchase. A rejected one (unknown event, sold
// out, storage failure) is kept so the caller can retry with the same token.
func (s *BookingService) Confirm(ctx context.Context, token string) (*Confirmation, error) {
	p, err := s.pending.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.WithFields(logrus.Fields{"token": token, "state": StateInvalid}).Info("confirmation refused")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("get pending booking: %w", err)
	}
	return s.commit(ctx, p)
}

// ConfirmLatest commits the most recent pending booking that names an
// existing event, so a client does not need to echo the token back.
func (s *BookingService) ConfirmLatest(ctx context.Context) (*Confirmation, error) {
	p, err := s.pending.GetMostRecent(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPendingBooking
		}
		return nil, fmt.Errorf("get most recent pending booking: %w", err)
	}
	return s.commit(ctx, p)
}

func (s *BookingService) commit(ctx context.Context, p *model.PendingBooking) (*Confirmation, error) {
	log := s.log.WithFields(logrus.Fields{"token": p.Token, "event": p.EventName, "tickets": p.Tickets})
	log.WithField("state", StateResolving).Debug("resolving pending booking")

	event, err := s.events.GetByName(ctx, p.EventName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.WithFields(logrus.Fields{"state": StateRejected, "reason": "event not found"}).Info("confirmation rejected")
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("resolve event: %w", err)
	}

	// The token is consumed in the ledger transaction, so concurrent
	// confirmations of one pending booking commit at most once.
	if err := s.events.PurchasePending(ctx, p.Token, event.ID, p.Tickets); err != nil {
		if errors.Is(err, repository.ErrPendingNotFound) {
			log.WithField("state", StateInvalid).Info("confirmation refused, token already consumed")
			return nil, ErrInvalidToken
		}
		log.WithFields(logrus.Fields{"state": StateRejected, "event_id": event.ID}).WithError(err).Info("confirmation rejected")
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEventNotFound
		case errors.Is(err, repository.ErrSoldOut):
			return nil, err
		default:
			return nil, fmt.Errorf("purchase tickets: %w", err)
		}
	}

	log.WithFields(logrus.Fields{"state": StateCommitted, "event_id": event.ID}).Info("booking confirmed")
	return &Confirmation{
		State:     StateCommitted,
		Token:     p.Token,
		EventID:   event.ID,
		EventName: event.Name,
		Tickets:   p.Tickets,
	}, nil
}
