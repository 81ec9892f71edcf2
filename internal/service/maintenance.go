package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"guild-economy-api/pkg/logger"
)

// Normalizer repairs stored guild documents.
type Normalizer interface {
	Normalize(ctx context.Context) (int, error)
}

// MaintenanceScheduler runs the normalization pass on a cron schedule.
type MaintenanceScheduler struct {
	target   Normalizer
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	log      *logrus.Entry

	mu        sync.Mutex
	isRunning bool
}

// NewMaintenanceScheduler creates a scheduler. schedule accepts standard cron
// expressions and descriptors such as "@every 6h".
func NewMaintenanceScheduler(target Normalizer, schedule string, log logrus.FieldLogger) *MaintenanceScheduler {
	if schedule == "" {
		schedule = "@every 6h"
	}
	return &MaintenanceScheduler{
		target:   target,
		schedule: schedule,
		timeout:  10 * time.Minute,
		cron:     cron.New(),
		log:      logger.Component(log, "Maintenance"),
	}
}

// Start registers the job and starts the cron runner.
func (s *MaintenanceScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.isRunning = true
	s.log.Infof("Started - schedule: %s", s.schedule)
	return nil
}

// Stop halts the runner and waits for a running job to finish.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.log.Info("Stopped")
}

// RunNow runs the pass immediately.
func (s *MaintenanceScheduler) RunNow(ctx context.Context) (int, error) {
	return s.target.Normalize(ctx)
}

func (s *MaintenanceScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.RunNow(ctx); err != nil {
		s.log.WithError(err).Warn("Scheduled normalization failed")
	}
}
