package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	aiProcessingTimeout = 2 * time.Minute
	sendMessageTimeout  = 10 * time.Second
	dbSaveTimeout       = 5 * time.Second
	resetTimeout        = 30 * time.Second
	typingInterval      = 4 * time.Second
)

// withBotName replaces the @botname placeholder with the bot's username.
func withBotName(deps HandlerDeps, msg string) string {
	if username := deps.Config.Telegram.BotInfo.Username; username != "" {
		return strings.ReplaceAll(msg, "@botname", "@"+username)
	}
	return msg
}

// sendText sends msg to chatID, as a reply when replyTo is positive.
func sendText(ctx context.Context, b *bot.Bot, chatID int64, replyTo int, msg string) (*models.Message, error) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	params := &bot.SendMessageParams{ChatID: chatID, Text: msg}
	if replyTo > 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo, AllowSendingWithoutReply: true}
	}
	return b.SendMessage(sendCtx, params)
}

// sendChunks sends each chunk in order, the first one as a reply to replyTo.
// It stops at the first failure and returns how many chunks were delivered.
func sendChunks(ctx context.Context, b *bot.Bot, chatID int64, replyTo int, chunks []string) (int, error) {
	for i, chunk := range chunks {
		if i > 0 {
			replyTo = 0
		}
		if _, err := sendText(ctx, b, chatID, replyTo, chunk); err != nil {
			return i, err
		}
	}
	return len(chunks), nil
}

// keepTyping shows the typing indicator in chatID until ctx is done.
func keepTyping(ctx context.Context, b *bot.Bot, chatID int64) {
	ticker := time.NewTicker(typingInterval)
	defer ticker.Stop()

	for {
		_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// commandArgs returns the text following the leading /command token. The
// first line's leading blanks are dropped; later lines keep their indentation.
func commandArgs(msgText string) string {
	if !strings.HasPrefix(msgText, "/") {
		return msgText
	}

	idx := strings.IndexAny(msgText, " \t\r\n")
	if idx < 0 {
		return ""
	}

	rest := strings.TrimLeft(msgText[idx:], " \t")
	rest = strings.TrimPrefix(strings.TrimPrefix(rest, "\r"), "\n")
	return strings.TrimRight(rest, " \t\r\n")
}

// messageText returns a message's text, falling back to its caption.
func messageText(msg *models.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

// commandInput is the text a text command works on: its arguments, or the
// message it replies to when there are none.
func commandInput(msg *models.Message) string {
	if args := commandArgs(msg.Text); strings.TrimSpace(args) != "" {
		return args
	}
	return messageText(msg.ReplyToMessage)
}
