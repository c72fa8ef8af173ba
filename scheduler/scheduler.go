// Package scheduler re-runs the scrape pipeline on a fixed interval
// for unattended operation.
package scheduler

import (
	"context"
	"log"
	"time"
)

// Scheduler runs a job periodically until stopped
type Scheduler struct {
	interval time.Duration
	job      func() error
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewScheduler creates a scheduler that calls job every interval
func NewScheduler(interval time.Duration, job func() error) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval: interval,
		job:      job,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the scheduler in a goroutine. The job runs once
// immediately, then on every tick.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cancel()
	log.Println("Scheduler stopped")
}

// Done is closed when the scheduler has been stopped
func (s *Scheduler) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Scheduler) run() {
	s.runJob()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runJob()
		}
	}
}

func (s *Scheduler) runJob() {
	log.Println("Scheduler: starting scrape run")
	if err := s.job(); err != nil {
		log.Printf("Scheduler: run failed: %v\n", err)
		return
	}
	log.Println("Scheduler: run completed")
}
