package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/history"
)

// Scheduler runs the nightly history retention sweep.
type Scheduler struct {
	store history.Store
	cron  *cron.Cron
}

func NewScheduler(store history.Store) *Scheduler {
	return &Scheduler{store: store}
}

// Start initializes cron tasks. No-op when no history store is configured.
func (s *Scheduler) Start() {
	if s.store == nil {
		return
	}

	c := cron.New(cron.WithSeconds())

	// nightly at 12:00 AM
	_, err := c.AddFunc("0 0 0 * * *", func() {
		s.runRetentionSweep()
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Cron scheduler started (history retention sweep nightly at 12:00AM)")
	c.Start()
	s.cron = c
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) runRetentionSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.store.Trim(ctx); err != nil {
		log.Printf("History retention sweep failed: %v", err)
		return
	}
	log.Println("History retention sweep completed at:", time.Now().Format(time.RFC1123))
}
