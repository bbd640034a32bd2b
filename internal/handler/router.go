package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/auth"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/service"
)

func newRouter(log *logrus.Entry) chi.Router {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log
	r.Use(CORS)
	return r
}

// NewAdminRouter builds the admin service's routes.
func NewAdminRouter(events *service.EventService, log *logrus.Entry) http.Handler {
	h := NewAdminHandler(events)
	r := newRouter(log)

	r.Get("/health", HealthCheck("admin ok"))
	r.Route("/api/admin/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Delete("/{id}", h.DeleteEvent)
	})
	return r
}

// ClientServices are the dependencies of the client service's routes.
type ClientServices struct {
	Events   *service.EventService
	Bookings *service.BookingService
	Accounts *service.AccountService
	Auth     *auth.Authenticator
}

// NewClientRouter builds the client service's routes.
func NewClientRouter(s ClientServices, log *logrus.Entry) http.Handler {
	client := NewClientHandler(s.Events, s.Bookings)
	accounts := NewAccountHandler(s.Accounts, s.Auth.TTL())
	assistant := NewAssistantHandler(s.Bookings)
	requireAuth := RequireAuth(s.Auth)

	r := newRouter(log)
	r.Get("/health", HealthCheck("client ok"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", client.ListEvents)
		r.With(requireAuth).Post("/events/{id}/purchase", client.Purchase)

		r.Post("/auth/register", accounts.Register)
		r.Post("/auth/login", accounts.Login)
		r.Post("/auth/logout", accounts.Logout)

		r.Post("/parse", assistant.Parse)
		r.With(requireAuth).Post("/confirm", assistant.Confirm)
	})
	return r
}
