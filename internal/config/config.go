// Package config loads, defaults and validates the plainbot configuration.
// Values come from a YAML file and can be overridden with PLAINBOT_ prefixed
// environment variables (for example PLAINBOT_TELEGRAM_TOKEN).
package config

import (
	"github.com/go-telegram/bot/models"
)

// Config holds the configuration for every plainbot component.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Normalizer NormalizerConfig `mapstructure:"normalizer"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds bot credentials and delivery limits.
type TelegramConfig struct {
	Token            string `mapstructure:"token"              validate:"required"`
	AdminUserID      int64  `mapstructure:"admin_user_id"      validate:"required,gt=0"`
	MaxMessageLength int    `mapstructure:"max_message_length" validate:"min=1,max=4096"`

	// BotInfo is filled at startup from getMe.
	BotInfo models.User `mapstructure:"-" validate:"-"`
}

// GeminiConfig configures the AI client.
type GeminiConfig struct {
	APIKey                 string  `mapstructure:"api_key"                  validate:"required"`
	ModelName              string  `mapstructure:"model_name"               validate:"required"`
	Temperature            float32 `mapstructure:"temperature"              validate:"min=0,max=2"`
	SystemInstruction      string  `mapstructure:"system_instruction"`
	MaxRetries             int     `mapstructure:"max_retries"              validate:"min=0,max=10"`
	RetryDelaySeconds      int     `mapstructure:"retry_delay_seconds"      validate:"min=0,max=60"`
	BreakerFailures        int     `mapstructure:"breaker_failures"         validate:"min=0"`
	BreakerCooldownSeconds int     `mapstructure:"breaker_cooldown_seconds" validate:"min=0"`
}

// DatabaseConfig configures message history storage.
type DatabaseConfig struct {
	Path               string `mapstructure:"path"                 validate:"required"`
	MaxHistoryMessages int    `mapstructure:"max_history_messages" validate:"min=1,max=1000"`
	RetentionDays      int    `mapstructure:"retention_days"       validate:"min=0"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a scheduled task on a cron expression with a seconds field.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// HTTPConfig controls the normalizer HTTP API.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// NormalizerConfig selects how AI replies are turned into plain text.
type NormalizerConfig struct {
	Mode          string `mapstructure:"mode" validate:"oneof=plain response list"`
	RenumberLists bool   `mapstructure:"renumber_lists"`
}

// MessagesConfig holds every user-facing bot message.
type MessagesConfig struct {
	Welcome            string `mapstructure:"welcome"              validate:"required"`
	Help               string `mapstructure:"help"                 validate:"required"`
	Unauthorized       string `mapstructure:"unauthorized"         validate:"required"`
	GeneralError       string `mapstructure:"general_error"        validate:"required"`
	ResetConfirm       string `mapstructure:"reset_confirm"        validate:"required"`
	ResetError         string `mapstructure:"reset_error"          validate:"required"`
	ResetTimeout       string `mapstructure:"reset_timeout"        validate:"required"`
	MentionNoPrompt    string `mapstructure:"mention_no_prompt"    validate:"required"`
	EmptyReplyFallback string `mapstructure:"empty_reply_fallback" validate:"required"`
	PlainUsage         string `mapstructure:"plain_usage"          validate:"required"`
	ListUsage          string `mapstructure:"list_usage"           validate:"required"`
}
