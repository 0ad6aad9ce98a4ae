// Package scheduler runs the league's recurring jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jthomisee/changing-500/internal/push"
	"github.com/jthomisee/changing-500/internal/store"
)

// reminderWindow is how far ahead the reminder job looks for scheduled games.
const reminderWindow = 24 * time.Hour

// Scheduler drives time-based work: reminding players about upcoming games.
type Scheduler struct {
	cron     *cron.Cron
	store    store.Store
	notifier *push.Notifier // nil when push is not configured
	log      *logrus.Logger
}

func New(st store.Store, notifier *push.Notifier, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		store:    st,
		notifier: notifier,
		log:      log,
	}
}

// Start registers the cron jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	// Hourly: push reminders for games starting within the next day.
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.RunReminders(context.Background()); err != nil {
			s.log.WithError(err).Error("game reminder job failed")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// RunReminders pushes a reminder for every scheduled game starting within
// the reminder window that hasn't been reminded yet, then flags each game
// so later runs skip it.
func (s *Scheduler) RunReminders(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}

	now := time.Now().UTC()
	games, err := s.store.ListUnremindedGames(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return err
	}

	for _, game := range games {
		if err := s.notifier.GameReminder(ctx, &game); err != nil {
			s.log.WithError(err).WithField("game", game.ID).Warn("failed to send game reminder")
			continue
		}
		if err := s.store.MarkReminded(ctx, game.ID); err != nil {
			s.log.WithError(err).WithField("game", game.ID).Warn("failed to mark game reminded")
		}
	}

	if len(games) > 0 {
		s.log.WithField("count", len(games)).Info("game reminders sent")
	}
	return nil
}
