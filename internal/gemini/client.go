// Package gemini implements reply generation on top of Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/plainbot/internal/config"
	"github.com/edgard/plainbot/internal/database"
	"github.com/edgard/plainbot/internal/resilience"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// historyPrefixRegex matches the per-message prefix the model sometimes echoes back.
var historyPrefixRegex = regexp.MustCompile(`(?m)^(?:\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] UID \d+: )+`)

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// Client generates chat replies from conversation history.
type Client interface {
	GenerateReply(ctx context.Context, messages []*database.Message, botID int64, botUsername, botFirstName string) (string, error)
}

// generateFunc matches genai's Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type sdkClient struct {
	generate      generateFunc
	breaker       *resilience.CircuitBreaker // nil when disabled
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	maxRetries    int
	retryDelay    time.Duration
}

// NewClient creates a Gemini client from cfg.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.ModelName)
	return newClient(gi.Models.GenerateContent, cfg, logger), nil
}

func newClient(generate generateFunc, cfg config.GeminiConfig, log *slog.Logger) *sdkClient {
	baseCfg := &genai.GenerateContentConfig{
		Temperature: &cfg.Temperature,
		Tools:       []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	if cfg.SystemInstruction != "" {
		baseCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.SystemInstruction}}}
	}

	var breaker *resilience.CircuitBreaker
	if cfg.BreakerFailures > 0 {
		breaker = resilience.NewCircuitBreaker(resilience.Config{
			Name:        "gemini",
			MaxFailures: cfg.BreakerFailures,
			Cooldown:    time.Duration(cfg.BreakerCooldownSeconds) * time.Second,
		}, log)
	}

	return &sdkClient{
		generate:      generate,
		breaker:       breaker,
		log:           log,
		contentConfig: baseCfg,
		modelName:     cfg.ModelName,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
}

func formatMessageForAI(m *database.Message) string {
	return fmt.Sprintf("[%s] UID %d: %s", m.Timestamp.Format(historyTimeLayout), m.UserID, m.Content)
}

// buildContents turns history into chat turns, oldest first. Messages written
// by the bot become model turns.
func buildContents(messages []*database.Message, botID int64) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.UserID == botID {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(formatMessageForAI(m), role))
	}
	return contents
}

func (c *sdkClient) withBotHeader(botUsername, botFirstName string) *genai.GenerateContentConfig {
	copyCfg := *c.contentConfig
	header := fmt.Sprintf(MentionSystemInstructionHeader, botFirstName, botUsername, botUsername)

	var existingText string
	if c.contentConfig.SystemInstruction != nil && len(c.contentConfig.SystemInstruction.Parts) > 0 {
		existingText = c.contentConfig.SystemInstruction.Parts[0].Text
	}

	copyCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: header + existingText}}}
	return &copyCfg
}

func isRetriable(err error) (int, bool) {
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	return apiErr.Code, apiErr.Code == http.StatusInternalServerError || apiErr.Code == http.StatusServiceUnavailable
}

func (c *sdkClient) generateWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.generate(ctx, c.modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		code, retriable := isRetriable(err)
		if !retriable {
			return nil, fmt.Errorf("gemini API call failed: %w", err)
		}
		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", c.maxRetries, code, err)
		}

		c.log.WarnContext(ctx, "Retrying Gemini API call", "attempt", attempt+1, "max_retries", c.maxRetries, "code", code, "delay", c.retryDelay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

// GenerateReply asks the model for the next message in the conversation.
func (c *sdkClient) GenerateReply(ctx context.Context, messages []*database.Message, botID int64, botUsername, botFirstName string) (string, error) {
	c.log.DebugContext(ctx, "Generating reply", "message_count", len(messages))

	contents := buildContents(messages, botID)
	genCfg := c.withBotHeader(botUsername, botFirstName)

	var resp *genai.GenerateContentResponse
	call := func(ctx context.Context) error {
		var err error
		resp, err = c.generateWithRetries(ctx, contents, genCfg)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini reply generation failed", "error", err)
		return "", err
	}

	return c.extractText(ctx, resp)
}

func (c *sdkClient) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := string(resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reason)
		return "", fmt.Errorf("reply blocked by safety filter: %s", reason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonStop &&
			resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			return "", fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, resp.Candidates[0].FinishReason)
		}
		return "", ErrEmptyResponse
	}

	cleanText := StripHistoryPrefixes(resp.Text())
	if cleanText == "" {
		c.log.WarnContext(ctx, "Gemini response text is empty after stripping prefixes")
		return "", ErrEmptyResponse
	}

	return cleanText, nil
}

// StripHistoryPrefixes removes echoed "[timestamp] UID n: " prefixes from each line.
func StripHistoryPrefixes(s string) string {
	return historyPrefixRegex.ReplaceAllString(s, "")
}
