// cmd/client-service is the entry point of the customer-facing API: event
// browsing, purchases, accounts and the booking assistant.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/auth"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/config"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/database"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/handler"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/intent"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/jobs"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/logging"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/server"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("6001")
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log, err := logging.Init(cfg.Log, "client-service")
	if err != nil {
		logrus.WithError(err).Fatal("logging")
	}

	// ── 1. Connect to the inventory store ─────────────────────────────────
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer db.Close()
	if err := database.InitialiseDB(ctx, db); err != nil {
		log.WithError(err).Fatal("initialise database")
	}
	log.WithField("driver", cfg.Database.Driver).Info("Connected to database")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(db)
	pendingRepo := repository.NewPendingBookingRepository(db)
	authenticator := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)

	var extractor intent.Extractor
	if cfg.LLM.APIKey != "" {
		extractor = intent.NewOpenAI(&http.Client{Timeout: cfg.LLM.Timeout}, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
		log.WithField("model", cfg.LLM.Model).Info("LLM intent extraction enabled")
	} else {
		log.Info("LLM_API_KEY not set, using the fallback parser only")
	}

	services := handler.ClientServices{
		Events:   service.NewEventService(eventRepo),
		Bookings: service.NewBookingService(eventRepo, pendingRepo, intent.NewResolver(extractor, cfg.LLM.Timeout)),
		Accounts: service.NewAccountService(repository.NewUserRepository(db), authenticator),
		Auth:     authenticator,
	}

	// ── 3. Expire abandoned pending bookings, if configured ──────────────
	if cfg.Pending.TTL > 0 {
		sweeper := jobs.NewPendingSweeper(pendingRepo, cfg.Pending.TTL, cfg.Pending.SweepInterval, log)
		if err := sweeper.Start(ctx); err != nil {
			log.WithError(err).Fatal("pending booking sweeper")
		}
		defer func() {
			if err := sweeper.Shutdown(); err != nil {
				log.WithError(err).Warn("pending booking sweeper shutdown")
			}
		}()
	}

	// ── 4. Serve until SIGINT or SIGTERM ─────────────────────────────────
	srv := server.New(cfg.Port, handler.NewClientRouter(services, log))
	if err := server.Run(ctx, srv, log); err != nil {
		log.WithError(err).Error("server stopped")
		return
	}
	log.Info("server stopped")
}
