package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/auth"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/intent"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/service"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/testutil"
)

func intPtr(v int) *int { return &v }

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	svc := service.NewEventService(repository.NewEventRepository(testutil.NewDB(t)))

	e, err := svc.CreateEvent(ctx, model.CreateEventRequest{
		Name: "  Jazz Night ", Date: "2030-05-01", TotalTickets: intPtr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", e.Name)
	assert.Equal(t, 50, e.TotalTickets)
	assert.Equal(t, 50, e.AvailableTickets)

	zero, err := svc.CreateEvent(ctx, model.CreateEventRequest{
		Name: "Private Show", Date: "2030-05-02", TotalTickets: intPtr(0),
	})
	require.NoError(t, err)
	assert.Zero(t, zero.AvailableTickets)

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestEventService_CreateEvent_Validation(t *testing.T) {
	svc := service.NewEventService(repository.NewEventRepository(testutil.NewDB(t)))

	tests := []struct {
		name string
		req  model.CreateEventRequest
		msg  string
	}{
		{
			name: "everything missing",
			req:  model.CreateEventRequest{},
			msg:  "Missing required fields: name, date, total_tickets",
		},
		{
			name: "blank name",
			req:  model.CreateEventRequest{Name: "   ", Date: "2030-05-01", TotalTickets: intPtr(1)},
			msg:  "Missing required fields: name",
		},
		{
			name: "bad date and negative total",
			req:  model.CreateEventRequest{Name: "X", Date: "01/05/2030", TotalTickets: intPtr(-1)},
			msg:  "Invalid fields: date, total_tickets",
		},
		{
			name: "too many tickets",
			req:  model.CreateEventRequest{Name: "X", Date: "2030-05-01", TotalTickets: intPtr(100_001)},
			msg:  "total_tickets cannot exceed 100,000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEvent(context.Background(), tt.req)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

type bookingFixture struct {
	svc     *service.BookingService
	pending *repository.PendingBookingRepository
	events  *repository.EventRepository
}

func newBookingFixture(t *testing.T) (bookingFixture, func(name string, total, available int) model.Event) {
	t.Helper()
	db := testutil.NewDB(t)
	events := repository.NewEventRepository(db)
	pending := repository.NewPendingBookingRepository(db)
	f := bookingFixture{
		svc:     service.NewBookingService(events, pending, intent.NewResolver(nil, 0)),
		pending: pending,
		events:  events,
	}
	insert := func(name string, total, available int) model.Event {
		return testutil.InsertEvent(t, db, name, total, available)
	}
	return f, insert
}

func available(t *testing.T, f bookingFixture, id int64) int {
	t.Helper()
	e, err := f.events.GetByID(context.Background(), id)
	require.NoError(t, err)
	return e.AvailableTickets
}

func TestBookingService_Purchase(t *testing.T) {
	ctx := context.Background()
	f, insert := newBookingFixture(t)
	e := insert("Jazz Night", 5, 5)

	require.NoError(t, f.svc.Purchase(ctx, e.ID, 0))
	assert.Equal(t, 4, available(t, f, e.ID))

	require.NoError(t, f.svc.Purchase(ctx, e.ID, 3))
	assert.Equal(t, 1, available(t, f, e.ID))

	require.ErrorIs(t, f.svc.Purchase(ctx, e.ID, 2), repository.ErrSoldOut)
	require.ErrorIs(t, f.svc.Purchase(ctx, e.ID+100, 1), repository.ErrNotFound)
	err := f.svc.Purchase(ctx, e.ID, -1)
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.EqualError(t, err, "Invalid fields: quantity")
	assert.Equal(t, 1, available(t, f, e.ID))
}

func TestBookingService_ProposeAndConfirm(t *testing.T) {
	ctx := context.Background()
	f, insert := newBookingFixture(t)
	e := insert("Jazz Night", 5, 5)

	p, err := f.svc.Propose(ctx, "Book 2 tickets for jazz night")
	require.NoError(t, err)
	require.NotNil(t, p.Pending)
	assert.Equal(t, intent.Book{Event: "Jazz Night", Tickets: 2}, p.Intent)
	assert.NotEmpty(t, p.Pending.Token)

	// Proposing reserves nothing.
	assert.Equal(t, 5, available(t, f, e.ID))

	c, err := f.svc.Confirm(ctx, p.Pending.Token)
	require.NoError(t, err)
	assert.Equal(t, service.StateCommitted, c.State)
	assert.Equal(t, e.ID, c.EventID)
	assert.Equal(t, 2, c.Tickets)
	assert.Equal(t, 3, available(t, f, e.ID))

	_, err = f.pending.GetByToken(ctx, p.Pending.Token)
	require.ErrorIs(t, err, repository.ErrNotFound)

	// A token is good for one confirmation only.
	_, err = f.svc.Confirm(ctx, p.Pending.Token)
	require.ErrorIs(t, err, service.ErrInvalidToken)
	assert.Equal(t, 3, available(t, f, e.ID))
}

// Many concurrent confirmations of one token commit exactly once; the rest
// find the token consumed.
func TestBookingService_Confirm_ConcurrentSameToken(t *testing.T) {
	ctx := context.Background()
	f, insert := newBookingFixture(t)
	e := insert("Jazz Night", 100, 100)

	p, err := f.svc.Propose(ctx, "book 2 tickets for Jazz Night")
	require.NoError(t, err)

	const attempts = 20
	errs := make([]error, attempts)
	var g errgroup.Group
	for i := range errs {
		g.Go(func() error {
			_, errs[i] = f.svc.Confirm(ctx, p.Pending.Token)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var committed int
	for _, err := range errs {
		if err == nil {
			committed++
			continue
		}
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 98, available(t, f, e.ID))

	_, err = f.pending.GetByToken(ctx, p.Pending.Token)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBookingService_Propose_List(t *testing.T) {
	f, insert := newBookingFixture(t)
	insert("Jazz Night", 5, 5)

	p, err := f.svc.Propose(context.Background(), "show me the events")
	require.NoError(t, err)
	assert.Equal(t, intent.List{}, p.Intent)
	assert.Nil(t, p.Pending)
	assert.Len(t, p.Events, 1)
}

func TestBookingService_Propose_Unrecognized(t *testing.T) {
	f, _ := newBookingFixture(t)

	_, err := f.svc.Propose(context.Background(), "what's the weather like")
	require.ErrorIs(t, err, intent.ErrUnrecognized)

	_, err = f.svc.Propose(context.Background(), "   ")
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.EqualError(t, err, "Missing required fields: text")
}

func TestBookingService_Confirm_UnknownToken(t *testing.T) {
	f, _ := newBookingFixture(t)
	_, err := f.svc.Confirm(context.Background(), "no-such-token")
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

// Rejected confirmations leave the pending record in place so the same
// token can be retried.
func TestBookingService_Confirm_RejectionKeepsPendingBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("event not found", func(t *testing.T) {
		f, _ := newBookingFixture(t)
		p, err := f.svc.Propose(ctx, "book 2 tickets for Ghost Gig")
		require.NoError(t, err)

		_, err = f.svc.Confirm(ctx, p.Pending.Token)
		require.ErrorIs(t, err, service.ErrEventNotFound)

		_, err = f.pending.GetByToken(ctx, p.Pending.Token)
		require.NoError(t, err)
	})

	t.Run("sold out", func(t *testing.T) {
		f, insert := newBookingFixture(t)
		e := insert("Jazz Night", 5, 1)
		p, err := f.svc.Propose(ctx, "book 2 tickets for Jazz Night")
		require.NoError(t, err)

		_, err = f.svc.Confirm(ctx, p.Pending.Token)
		require.ErrorIs(t, err, repository.ErrSoldOut)
		assert.Equal(t, 1, available(t, f, e.ID))

		_, err = f.pending.GetByToken(ctx, p.Pending.Token)
		require.NoError(t, err)
	})

	t.Run("retry succeeds once the event exists", func(t *testing.T) {
		f, insert := newBookingFixture(t)
		p, err := f.svc.Propose(ctx, "book 1 ticket for Late Show")
		require.NoError(t, err)

		_, err = f.svc.Confirm(ctx, p.Pending.Token)
		require.ErrorIs(t, err, service.ErrEventNotFound)

		e := insert("Late Show", 3, 3)
		c, err := f.svc.Confirm(ctx, p.Pending.Token)
		require.NoError(t, err)
		assert.Equal(t, e.ID, c.EventID)
		assert.Equal(t, 2, available(t, f, e.ID))
	})
}

func TestBookingService_ConfirmLatest(t *testing.T) {
	ctx := context.Background()
	f, insert := newBookingFixture(t)

	_, err := f.svc.ConfirmLatest(ctx)
	require.ErrorIs(t, err, service.ErrNoPendingBooking)

	jazz := insert("Jazz Night", 5, 5)
	rock := insert("Rock Fest", 5, 5)

	_, err = f.svc.Propose(ctx, "book 1 ticket for Jazz Night")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	latest, err := f.svc.Propose(ctx, "book 2 tickets for Rock Fest")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	// Names no existing event, so it is skipped.
	_, err = f.svc.Propose(ctx, "book 3 tickets for Ghost Gig")
	require.NoError(t, err)

	c, err := f.svc.ConfirmLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest.Pending.Token, c.Token)
	assert.Equal(t, rock.ID, c.EventID)
	assert.Equal(t, 3, available(t, f, rock.ID))
	assert.Equal(t, 5, available(t, f, jazz.ID))
}

func newAccountService(t *testing.T) *service.AccountService {
	t.Helper()
	return service.NewAccountService(
		repository.NewUserRepository(testutil.NewDB(t)),
		auth.New("secret", time.Minute, bcrypt.MinCost),
	)
}

func TestAccountService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAccountService(t)

	u, err := svc.Register(ctx, model.CredentialsRequest{Email: " Ada@Example.com ", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = svc.Register(ctx, model.CredentialsRequest{Email: "ADA@example.com", Password: "other"})
	require.ErrorIs(t, err, service.ErrUserExists)

	got, token, err := svc.Login(ctx, model.CredentialsRequest{Email: "ada@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, model.CredentialsRequest{Email: "ada@example.com", Password: "wrong"})
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, model.CredentialsRequest{Email: "bob@example.com", Password: "hunter2"})
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestAccountService_Register_Validation(t *testing.T) {
	svc := newAccountService(t)

	_, err := svc.Register(context.Background(), model.CredentialsRequest{Email: "not-an-email", Password: "x"})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Invalid fields: email", verr.Msg)
}
