package tasks

import (
	"context"
)

// ScheduledTaskFunc is the signature of every scheduled task. Tasks must
// respect cancellation of ctx.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names, matching the keys of the scheduler.tasks configuration section.
const (
	SQLMaintenanceTask   = "sql_maintenance"
	HistoryRetentionTask = "history_retention"
)

// RegisterAllTasks builds every known task keyed by its configuration name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		SQLMaintenanceTask:   newSQLMaintenanceTask(deps),
		HistoryRetentionTask: newHistoryRetentionTask(deps),
	}

	for name, fn := range tasks {
		tasks[name] = observed(deps, name, fn)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}

// observed counts each run of fn in the task metrics.
func observed(deps TaskDeps, name string, fn ScheduledTaskFunc) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		err := fn(ctx)
		deps.Metrics.ObserveTask(name, err)
		return err
	}
}
