// Package intent turns free-text booking requests into structured intents.
//
// A configured [Extractor] (normally an LLM) is tried first. Its failures
// are never returned to the caller: an error, a timeout or an incomplete
// answer all fall through to the deterministic parser in [Parse].
package intent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
)

// ErrUnrecognized is returned when neither the extractor nor the fallback
// parser could make sense of the text.
var ErrUnrecognized = errors.New("could not parse request")

// Intent is one of [Book] or [List].
type Intent interface {
	isIntent()
}

// Book asks for Tickets tickets to the event named Event.
type Book struct {
	Event   string
	Tickets int
}

// List asks which events are on offer.
type List struct{}

func (Book) isIntent() {}
func (List) isIntent() {}

// Extraction is the raw answer of an extractor. Nil fields mean the
// extractor did not find that part.
type Extraction struct {
	Event   *string `json:"event"`
	Tickets *int    `json:"tickets"`
	Intent  *string `json:"intent"`
}

// Extractor is an external, possibly unreliable, intent extraction service.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// Resolver combines an optional extractor with the fallback parser.
type Resolver struct {
	extractor Extractor
	timeout   time.Duration
	log       *logrus.Entry
}

// NewResolver builds a Resolver. extractor may be nil, in which case only
// the fallback parser is used. timeout bounds each extractor call.
func NewResolver(extractor Extractor, timeout time.Duration) *Resolver {
	return &Resolver{
		extractor: extractor,
		timeout:   timeout,
		log:       logrus.WithField("component", "intent"),
	}
}

// Resolve returns the intent expressed by text, or ErrUnrecognized.
func (r *Resolver) Resolve(ctx context.Context, text string) (Intent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrUnrecognized
	}

	if in, ok := r.extract(ctx, text); ok {
		return in, nil
	}
	return Parse(text)
}

func (r *Resolver) extract(ctx context.Context, text string) (Intent, bool) {
	if r.extractor == nil {
		return nil, false
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ext, err := r.extractor.Extract(ctx, text)
	if err != nil {
		r.log.WithError(err).Warn("extractor failed, using fallback parser")
		return nil, false
	}
	if ext == nil {
		return nil, false
	}

	if ext.Event != nil && ext.Tickets != nil {
		event := eventName(*ext.Event)
		if event != "" && *ext.Tickets > 0 && *ext.Tickets <= model.MaxTickets {
			return Book{Event: event, Tickets: *ext.Tickets}, true
		}
	}
	if ext.Intent != nil && strings.EqualFold(*ext.Intent, "list") {
		return List{}, true
	}

	r.log.Debug("extractor result incomplete, using fallback parser")
	return nil, false
}
