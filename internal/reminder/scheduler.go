// internal/reminder/scheduler.go
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler hosts the daily reminder sweep. It is an explicit component
// constructed once at startup with its collaborators; there is no
// package-level instance.
type Scheduler struct {
	cron    *cron.Cron
	service Service
	log     zerolog.Logger
}

// NewScheduler wires the sweep onto the given cron expression (e.g.
// "0 8 * * *" for a fixed daily hour).
func NewScheduler(service Service, spec string, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		service: service,
		log:     log,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid reminder cron %q: %w", spec, err)
	}
	return s, nil
}

// Start runs one eager sweep immediately, then hands off to the cron timer.
func (s *Scheduler) Start() {
	s.tick()
	s.cron.Start()
}

// Stop halts the timer and returns a context that is done once any running
// sweep has finished. Reminder records already written by an interrupted
// sweep stand; dedup is keyed by calendar due date, so the next tick is
// unaffected.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) tick() {
	if _, err := s.service.RunSweep(context.Background(), time.Now().UTC()); err != nil {
		s.log.Error().Err(err).Msg("reminder sweep aborted")
	}
}
