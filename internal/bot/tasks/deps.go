// Package tasks implements the scheduled maintenance tasks of plainbot.
package tasks

import (
	"log/slog"

	"github.com/edgard/plainbot/internal/config"
	"github.com/edgard/plainbot/internal/database"
	"github.com/edgard/plainbot/internal/metrics"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   database.Store
	Config  *config.Config
	Metrics *metrics.Metrics
}
