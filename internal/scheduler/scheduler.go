package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/vtarasov/blog-service/internal/service"
)

// Scheduler runs periodic background jobs
type Scheduler struct {
	cron *cron.Cron
	svc  *service.Service
	log  *logrus.Logger
}

// NewScheduler initializes the scheduler with its jobs registered
func NewScheduler(svc *service.Service, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), svc: svc, log: log}

	// Scheduled drafts become published once their publish time passes
	if _, err := s.cron.AddFunc("@every 1m", s.publishDue); err != nil {
		return nil, fmt.Errorf("failed to register publish job: %w", err)
	}

	return s, nil
}

// Start launches the cron loop in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop halts the cron loop
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) publishDue() {
	if _, err := s.svc.PublishDuePosts(); err != nil {
		s.log.Errorf("Failed to publish scheduled posts: %v", err)
	}
}
