// Package scheduler triggers batch passes on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/pkg/support/logger"
)

// BatchRunner runs one batch pass. *orchestrator.Orchestrator implements it.
type BatchRunner interface {
	Run(ctx context.Context, hint time.Time, opts model.RunOptions) (*model.JobResult, error)
}

// Scheduler runs a batch pass each time the cron spec fires, in the configured timezone.
// Overlapping fires are skipped while a pass is still running.
type Scheduler struct {
	cron   *cron.Cron
	runner BatchRunner
	opts   model.RunOptions
	loc    *time.Location
	now    func() time.Time

	mu      sync.Mutex
	running bool
}

// New parses spec (standard five field cron) and returns a stopped Scheduler.
func New(spec string, loc *time.Location, runner BatchRunner, opts model.RunOptions) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		runner: runner,
		opts:   opts,
		loc:    loc,
		now:    time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
		return nil, fmt.Errorf("invalid scheduler spec %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	logger.Infof("Scheduler started (next pass at %s).", s.Next().Format(time.RFC3339))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running pass to finish or ctx to be done.
func (s *Scheduler) Stop(ctx context.Context) error {
	logger.Infof("Stopping scheduler.")
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next fire time.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if entries[0].Next.IsZero() {
		sched := entries[0].Schedule
		return sched.Next(s.now().In(s.loc))
	}
	return entries[0].Next
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler: previous pass still running, skipping this fire.")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	hint := model.DateOf(s.now(), s.loc)
	logger.Infof("Scheduler: starting batch pass for %s.", model.YMD(hint))
	res, err := s.runner.Run(context.Background(), hint, s.opts)
	if err != nil {
		logger.Errorf("Scheduler: batch pass failed: %v", err)
		return
	}
	logger.Infof("Scheduler: batch pass %s finished with %s (%d/%d farms complete).",
		res.Period, res.Status, res.CompleteCnt, res.TargetCnt)
}
