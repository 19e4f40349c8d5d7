package tasks

import (
	"context"
	"fmt"
	"time"
)

// newHistoryRetentionTask deletes messages older than database.retention_days.
// A retention of zero days keeps history forever.
func newHistoryRetentionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", HistoryRetentionTask)

	return func(ctx context.Context) error {
		days := deps.Config.Database.RetentionDays
		if days <= 0 {
			log.DebugContext(ctx, "History retention disabled")
			return nil
		}

		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		deleted, err := deps.Store.DeleteMessagesBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("history retention failed: %w", err)
		}

		log.InfoContext(ctx, "History retention completed", "cutoff", cutoff, "deleted", deleted)
		return nil
	}
}
