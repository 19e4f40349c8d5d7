package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plainbot/internal/text"
)

// NewPlainHandler returns a handler for the /plain command, which strips
// markdown from its argument or from the message it replies to.
func NewPlainHandler(deps HandlerDeps) bot.HandlerFunc {
	return plainHandler{deps}.Handle
}

type plainHandler struct {
	deps HandlerDeps
}

func (h plainHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "plain")

	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	input := commandInput(msg)
	n := text.Normalizer{Mode: text.ModePlain, MaxLength: h.deps.Config.Telegram.MaxMessageLength}
	out := n.Apply(input)
	chunks := text.Split(out, n.MaxLength)
	if len(chunks) == 0 {
		if _, err := sendText(ctx, b, chatID, msg.ID, h.deps.Config.Messages.PlainUsage); err != nil {
			log.ErrorContext(ctx, "Failed to send usage message", "error", err, "chat_id", chatID)
		}
		return
	}
	h.deps.Metrics.ObserveNormalization(string(text.ModePlain), input, out)

	sent, err := sendChunks(ctx, b, chatID, msg.ID, chunks)
	h.deps.Metrics.AddRepliesSent(sent)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send plain text", "error", err, "chat_id", chatID, "sent", sent, "chunks", len(chunks))
		return
	}
	log.DebugContext(ctx, "Sent plain text", "chat_id", chatID, "chunks", len(chunks))
}
