// cmd/admin-service is the entry point of the event administration API.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/config"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/database"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/handler"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/logging"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/server"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("5001")
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log, err := logging.Init(cfg.Log, "admin-service")
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
	eventSvc := service.NewEventService(repository.NewEventRepository(db))

	// ── 3. Serve until SIGINT or SIGTERM ─────────────────────────────────
	srv := server.New(cfg.Port, handler.NewAdminRouter(eventSvc, log))
	if err := server.Run(ctx, srv, log); err != nil {
		log.WithError(err).Error("server stopped")
		return
	}
	log.Info("server stopped")
}
