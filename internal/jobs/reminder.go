package jobs

import (
	"context"
	"log"
	"time"

	"compliancehub/training/internal/config"
	"compliancehub/training/internal/store"
)

// StartReminderJob periodically logs reminder notifications against
// workflows still waiting on signatures.
func StartReminderJob(ctx context.Context, cfg config.Config, st *store.Store) {
	if !cfg.ReminderJobEnabled {
		return
	}
	interval := cfg.ReminderJobInterval
	if interval <= 0 {
		interval = time.Hour
	}
	age := cfg.ReminderAge
	if age <= 0 {
		age = 72 * time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reminded, err := st.RemindPending(ctx, age)
				if err != nil {
					log.Printf("reminder job error: %v", err)
					continue
				}
				if reminded > 0 {
					log.Printf("reminder job logged %d reminders", reminded)
				}
			}
		}
	}()
}
