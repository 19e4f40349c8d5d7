package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plainbot/internal/text"
)

const renumberArg = "renumber"

// NewListHandler returns a handler for the /list command. "/list renumber"
// renumbers ordered items regardless of the configured default.
func NewListHandler(deps HandlerDeps) bot.HandlerFunc {
	return listHandler{deps}.Handle
}

type listHandler struct {
	deps HandlerDeps
}

// parseListArgs splits an optional leading "renumber" word off the command
// arguments.
func parseListArgs(args string) (rest string, renumber bool) {
	first, after, _ := strings.Cut(args, "\n")
	word, remainder, _ := strings.Cut(strings.TrimSpace(first), " ")
	if !strings.EqualFold(word, renumberArg) {
		return args, false
	}

	rest = strings.TrimSpace(remainder)
	if after != "" {
		if rest != "" {
			rest += "\n"
		}
		rest += after
	}
	return rest, true
}

func (h listHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "list")

	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	input, renumber := parseListArgs(commandArgs(msg.Text))
	if strings.TrimSpace(input) == "" {
		input = messageText(msg.ReplyToMessage)
	}

	n := text.Normalizer{
		Mode:      text.ModeList,
		Renumber:  renumber || h.deps.Config.Normalizer.RenumberLists,
		MaxLength: h.deps.Config.Telegram.MaxMessageLength,
	}
	out := n.Apply(input)
	chunks := text.Split(out, n.MaxLength)
	if len(chunks) == 0 {
		if _, err := sendText(ctx, b, chatID, msg.ID, h.deps.Config.Messages.ListUsage); err != nil {
			log.ErrorContext(ctx, "Failed to send usage message", "error", err, "chat_id", chatID)
		}
		return
	}
	h.deps.Metrics.ObserveNormalization(string(text.ModeList), input, out)

	sent, err := sendChunks(ctx, b, chatID, msg.ID, chunks)
	h.deps.Metrics.AddRepliesSent(sent)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send list", "error", err, "chat_id", chatID, "sent", sent)
	}
}
