// Package jobs runs background maintenance on a gocron scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// PendingStore is the part of the pending booking registry the sweeper needs.
type PendingStore interface {
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PendingSweeper periodically deletes pending bookings older than a TTL.
type PendingSweeper struct {
	store     PendingStore
	ttl       time.Duration
	interval  time.Duration
	now       func() time.Time
	log       *logrus.Entry
	scheduler gocron.Scheduler
}

// NewPendingSweeper constructs a PendingSweeper. It does nothing until
// Start is called.
func NewPendingSweeper(store PendingStore, ttl, interval time.Duration, log *logrus.Entry) *PendingSweeper {
	return &PendingSweeper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		log:      log.WithField("job", "pending-sweeper"),
	}
}

// Start schedules the sweep every interval. Runs never overlap.
func (s *PendingSweeper) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if _, err := s.Sweep(ctx); err != nil {
				s.log.WithError(err).Error("sweep failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("pending-sweeper"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule sweep: %w", err)
	}

	sched.Start()
	s.scheduler = sched
	s.log.WithFields(logrus.Fields{"ttl": s.ttl, "interval": s.interval}).Info("pending booking sweeper started")
	return nil
}

// Shutdown stops the scheduler and waits for a running sweep to finish.
func (s *PendingSweeper) Shutdown() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

// Sweep deletes pending bookings created more than ttl ago.
func (s *PendingSweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteCreatedBefore(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithField("deleted", n).Info("expired pending bookings")
	}
	return n, nil
}
