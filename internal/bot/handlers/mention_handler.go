package handlers

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/plainbot/internal/database"
	"github.com/edgard/plainbot/internal/text"
)

const (
	defaultMaxHistory = 100
	saveRetries       = 3
	saveRetryBackoff  = 500 * time.Millisecond
)

type mentionHandler struct {
	deps HandlerDeps
}

// NewMentionHandler returns the default handler. It answers messages that
// mention the bot or reply to it with an AI reply converted to plain text.
func NewMentionHandler(deps HandlerDeps) bot.HandlerFunc {
	return mentionHandler{deps}.Handle
}

func (h mentionHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "mention")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	content := messageText(msg)
	if content == "" || !isAddressedToBot(msg, content, deps.Config.Telegram.BotInfo) {
		return
	}

	chatID := msg.Chat.ID
	log.DebugContext(ctx, "Handling mention", "chat_id", chatID, "message_id", msg.ID)

	timestamp := time.Now().UTC()
	if msg.Date > 0 {
		timestamp = time.Unix(int64(msg.Date), 0).UTC()
	}
	incoming := &database.Message{
		ChatID:    chatID,
		UserID:    msg.From.ID,
		Content:   content,
		Timestamp: timestamp,
	}
	saveMessageWithRetry(ctx, deps, incoming, "incoming message")

	if strings.TrimSpace(stripMention(content, deps.Config.Telegram.BotInfo.Username)) == "" {
		log.InfoContext(ctx, "Mention received but prompt is empty", "chat_id", chatID)
		if _, err := sendText(ctx, b, chatID, msg.ID, deps.Config.Messages.MentionNoPrompt); err != nil {
			log.ErrorContext(ctx, "Failed to send empty prompt message", "error", err, "chat_id", chatID)
		}
		return
	}

	maxHistory := deps.Config.Database.MaxHistoryMessages
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}

	h.reply(ctx, b, chatID, msg.ID, h.contextMessages(ctx, incoming, maxHistory))
}

// contextMessages loads the chat history up to and including incoming, oldest first.
func (h mentionHandler) contextMessages(ctx context.Context, incoming *database.Message, maxHistory int) []*database.Message {
	msgs, err := h.deps.Store.GetRecentMessages(ctx, incoming.ChatID, maxHistory, incoming.ID)
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to retrieve message history", "error", err, "chat_id", incoming.ChatID)
		msgs = nil
	}

	msgs = DeduplicateMessages(append(msgs, incoming))
	if len(msgs) > maxHistory {
		return msgs[len(msgs)-maxHistory:]
	}
	return msgs
}

func (h mentionHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, replyTo int, history []*database.Message) {
	deps := h.deps
	log := deps.Logger.With("handler", "mention")
	botInfo := deps.Config.Telegram.BotInfo

	typingCtx, stopTyping := context.WithCancel(ctx)
	typingDone := make(chan struct{})
	go func() {
		defer close(typingDone)
		keepTyping(typingCtx, b, chatID)
	}()

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	start := time.Now()
	resp, err := deps.GeminiClient.GenerateReply(aiCtx, history, botInfo.ID, botInfo.Username, botInfo.FirstName)
	cancel()
	stopTyping()
	<-typingDone

	deps.Metrics.ObserveReply(time.Since(start), err)
	if err != nil {
		log.ErrorContext(ctx, "AI generation failed", "error", err, "chat_id", chatID)
		if _, sendErr := sendText(ctx, b, chatID, replyTo, deps.Config.Messages.GeneralError); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send AI error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	out := deps.Normalizer.Apply(resp)
	deps.Metrics.ObserveNormalization(string(deps.Normalizer.Mode), resp, out)
	if strings.TrimSpace(out) == "" {
		log.WarnContext(ctx, "AI reply is empty after normalization, using fallback", "chat_id", chatID)
		out = deps.Config.Messages.EmptyReplyFallback
	}

	chunks := text.Split(out, deps.Normalizer.MaxLength)
	sent, err := sendChunks(ctx, b, chatID, replyTo, chunks)
	deps.Metrics.AddRepliesSent(sent)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID, "sent", sent, "chunks", len(chunks))
		if sent == 0 {
			return
		}
	}
	log.InfoContext(ctx, "Sent reply", "chat_id", chatID, "chunks", sent)

	if botInfo.ID == 0 {
		log.WarnContext(ctx, "Bot ID unknown, skipping saving bot reply", "chat_id", chatID)
		return
	}
	if sent < len(chunks) {
		out = strings.Join(chunks[:sent], "\n")
	}
	saveMessageWithRetry(ctx, deps, &database.Message{
		ChatID:    chatID,
		UserID:    botInfo.ID,
		Content:   out,
		Timestamp: time.Now().UTC(),
	}, "bot reply")
}

// isAddressedToBot reports whether msg mentions the bot by @username or text
// mention, or replies to one of the bot's messages.
func isAddressedToBot(msg *models.Message, content string, botInfo models.User) bool {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && botInfo.ID != 0 &&
		msg.ReplyToMessage.From.ID == botInfo.ID {
		return true
	}

	for _, e := range slices.Concat(msg.Entities, msg.CaptionEntities) {
		if e.Type == models.MessageEntityTypeTextMention && e.User != nil && botInfo.ID != 0 && e.User.ID == botInfo.ID {
			return true
		}
	}

	if botInfo.Username == "" {
		return false
	}
	for _, w := range strings.Fields(content) {
		if isMentionWord(w, botInfo.Username) {
			return true
		}
	}
	return false
}

func isMentionWord(word, username string) bool {
	word = strings.TrimRightFunc(word, unicode.IsPunct)
	word = strings.TrimLeftFunc(word, func(r rune) bool { return r != '@' && unicode.IsPunct(r) })
	return strings.EqualFold(word, "@"+username)
}

// stripMention removes every @username mention from s.
func stripMention(s, username string) string {
	if username == "" {
		return s
	}
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !isMentionWord(w, username) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// DeduplicateMessages drops nil entries and repeated IDs and orders the rest
// by timestamp, then ID. Unsaved messages (ID 0) are always kept.
func DeduplicateMessages(messages []*database.Message) []*database.Message {
	seen := make(map[int64]struct{}, len(messages))
	result := make([]*database.Message, 0, len(messages))

	for _, m := range messages {
		if m == nil {
			continue
		}
		if m.ID != 0 {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
		}
		result = append(result, m)
	}

	slices.SortStableFunc(result, func(a, b *database.Message) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}

// saveMessageWithRetry stores msg, retrying with a linear backoff. Failures
// are logged and otherwise ignored.
func saveMessageWithRetry(ctx context.Context, deps HandlerDeps, msg *database.Message, msgType string) {
	log := deps.Logger.With("handler", "mention")
	var err error

	for attempt := 1; attempt <= saveRetries; attempt++ {
		dbCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
		err = deps.Store.SaveMessage(dbCtx, msg)
		cancel()

		if err == nil {
			log.DebugContext(ctx, fmt.Sprintf("%s saved", msgType), "db_message_id", msg.ID, "chat_id", msg.ChatID)
			return
		}

		if errors.Is(err, database.ErrInvalidMessage) {
			log.ErrorContext(ctx, fmt.Sprintf("Refusing to save invalid %s", msgType), "error", err, "chat_id", msg.ChatID)
			return
		}
		log.WarnContext(ctx, fmt.Sprintf("Failed to save %s", msgType), "error", err, "chat_id", msg.ChatID, "attempt", attempt)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * saveRetryBackoff):
		}
	}

	log.ErrorContext(ctx, fmt.Sprintf("Failed to save %s after %d attempts", msgType, saveRetries), "error", err, "chat_id", msg.ChatID)
}
