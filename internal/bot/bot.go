// Package bot orchestrates the plainbot components: Telegram polling, the
// task scheduler and the optional HTTP API.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/plainbot/internal/httpapi"
)

// Bot manages the lifecycle of the long-running components.
type Bot struct {
	logger     *slog.Logger
	tgBot      *tgbot.Bot
	scheduler  *Scheduler
	httpServer *httpapi.Server
}

// NewBot creates the orchestrator. httpServer may be nil when the HTTP API is disabled.
func NewBot(logger *slog.Logger, tgBot *tgbot.Bot, scheduler *Scheduler, httpServer *httpapi.Server) *Bot {
	return &Bot{
		logger:     logger.With("component", "bot_orchestrator"),
		tgBot:      tgBot,
		scheduler:  scheduler,
		httpServer: httpServer,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails. Cancellation is a clean shutdown and returns nil.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener")
		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.httpServer != nil {
		g.Go(func() error {
			return b.httpServer.Run(gCtx)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
