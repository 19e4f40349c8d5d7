package handlers

import (
	"fmt"
	"log/slog"

	"github.com/edgard/plainbot/internal/config"
	"github.com/edgard/plainbot/internal/database"
	"github.com/edgard/plainbot/internal/gemini"
	"github.com/edgard/plainbot/internal/metrics"
	"github.com/edgard/plainbot/internal/text"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Store        database.Store
	GeminiClient gemini.Client
	Metrics      *metrics.Metrics

	// Normalizer turns AI replies into Telegram-sized plain text chunks.
	Normalizer text.Normalizer
}

// NewReplyNormalizer builds the AI reply normalizer from the normalizer and
// telegram sections of cfg.
func NewReplyNormalizer(cfg *config.Config) (text.Normalizer, error) {
	mode, err := text.ParseMode(cfg.Normalizer.Mode)
	if err != nil {
		return text.Normalizer{}, fmt.Errorf("invalid normalizer config: %w", err)
	}

	return text.Normalizer{
		Mode:      mode,
		Renumber:  cfg.Normalizer.RenumberLists,
		MaxLength: cfg.Telegram.MaxMessageLength,
	}, nil
}
