package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Sweeper is satisfied by *panel.Manager.
type Sweeper interface {
	Sweep() int
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
}

func NewScheduler(sweeper Sweeper) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		sweeper: sweeper,
	}
}

// Start registers the panel sweep on spec (six fields, seconds first) and
// starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.sweepPanels); err != nil {
		return fmt.Errorf("schedule panel sweep %q: %w", spec, err)
	}
	s.cron.Start()
	log.Printf("Cron scheduler started (panel sweep %q)", spec)
	return nil
}

// Stop halts scheduling and returns a context done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweepPanels() {
	if n := s.sweeper.Sweep(); n > 0 {
		log.Printf("Panel sweep closed %d stale panels", n)
	}
}
