// Package scheduler runs the daily forecast workflow on a clock schedule
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"imsforecast.app/config"
	"imsforecast.app/pkg/logger"
	"imsforecast.app/workflow"
)

// Scheduler triggers one workflow run per day at the configured time
type Scheduler struct {
	scheduler *gocron.Scheduler
	workflow  *workflow.Workflow
	config    *config.SchedulerConfig
	log       *logger.Logger
}

// New creates a daily scheduler around the workflow
func New(w *workflow.Workflow, cfg *config.SchedulerConfig, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		workflow:  w,
		config:    cfg,
		log:       log,
	}
}

// Start registers the daily job and blocks running it. A failed run is
// logged and the schedule keeps going; the next morning gets a fresh
// attempt.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.config.RunAt).Do(func() {
		s.log.Info("scheduled forecast run starting", "run_at", s.config.RunAt)
		if err := s.workflow.Run(workflow.Options{}); err != nil {
			s.log.Error("scheduled forecast run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.log.Info("scheduler started", "run_at", s.config.RunAt)
	s.scheduler.StartBlocking()
	return nil
}

// Stop cancels future runs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
