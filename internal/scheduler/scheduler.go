// Package scheduler wires up the cron job that periodically triggers an
// ingestion run.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/runs"
)

// Trigger is the name recorded on runs started by the scheduler.
const Trigger = "schedule"

// Launcher starts a background ingestion run.
type Launcher interface {
	Trigger(ctx context.Context, trigger string) (*model.Run, error)
}

// Scheduler wraps robfig/cron and fires the ingestion trigger.
type Scheduler struct {
	cron     *cron.Cron
	launcher Launcher
	spec     string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(launcher Launcher, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		launcher: launcher,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also triggers one run
// immediately so the store is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.fire(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	s.fire(ctx)
	return nil
}

// Stop stops the cron loop. Runs already launched are not affected.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) fire(ctx context.Context) {
	run, err := s.launcher.Trigger(ctx, Trigger)
	switch {
	case errors.Is(err, runs.ErrRunInProgress):
		log.Println("[scheduler] Previous run still in progress — skipping this tick")
	case err != nil:
		log.Printf("[scheduler] Trigger error: %v", err)
	default:
		log.Printf("[scheduler] Ingestion run %s triggered", run.ID)
	}
}
