// Package scheduler triggers the daily batch run on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"BoursePulse/internal/logger"
	"BoursePulse/internal/pipeline"
)

// Scheduler manages the cron task driving the pipeline.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *pipeline.Pipeline
	ctx      context.Context
	log      *logrus.Entry

	// running prevents overlapping runs when a batch outlasts the
	// schedule interval.
	mu      sync.Mutex
	running bool
}

// New creates a scheduler bound to ctx; a cancelled ctx aborts in-flight runs.
func New(ctx context.Context, p *pipeline.Pipeline) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		pipeline: p,
		ctx:      ctx,
		log:      logger.With("scheduler"),
	}
}

// Register installs the daily batch at the given cron spec (with seconds).
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.cron.AddFunc(dailyCron, s.runOnce); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

// RunNow executes the batch immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("previous run still in progress, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.pipeline.Run(s.ctx); err != nil {
		s.log.WithError(err).Error("batch run failed")
	}
}
