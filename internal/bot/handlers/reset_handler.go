package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewResetHandler returns a handler for the /mrl_reset command, which deletes
// the stored conversation history.
func NewResetHandler(deps HandlerDeps) bot.HandlerFunc {
	return resetHandler{deps}.Handle
}

type resetHandler struct {
	deps HandlerDeps
}

func (h resetHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reset")
	if update.Message == nil || update.Message.From == nil {
		log.ErrorContext(ctx, "Reset handler called with nil Message or From", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Admin requested history reset", "chat_id", chatID, "user_id", update.Message.From.ID)

	timeoutCtx, cancel := context.WithTimeout(ctx, resetTimeout)
	defer cancel()

	reply := h.deps.Config.Messages.ResetConfirm
	err := h.deps.Store.DeleteAllMessages(timeoutCtx)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		log.WarnContext(ctx, "Reset operation timed out or was cancelled", "chat_id", chatID)
		reply = h.deps.Config.Messages.ResetTimeout
	case err != nil:
		log.ErrorContext(ctx, "Failed to reset history", "error", err, "chat_id", chatID)
		reply = h.deps.Config.Messages.ResetError
	default:
		log.InfoContext(ctx, "Deleted all messages", "chat_id", chatID)
	}

	if _, err := sendText(ctx, b, chatID, 0, reply); err != nil {
		log.ErrorContext(ctx, "Failed to send reset reply", "error", err, "chat_id", chatID)
	}
}
