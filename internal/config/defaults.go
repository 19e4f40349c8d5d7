package config

import "github.com/spf13/viper"

// Default values for optional configuration keys.
const (
	DefaultLogLevel = "info"

	DefaultMaxMessageLength = 4096 // Telegram's limit for a text message

	DefaultGeminiModel             = "gemini-2.0-flash"
	DefaultGeminiTemperature       = 1.0
	DefaultGeminiMaxRetries        = 3
	DefaultGeminiRetryDelaySeconds = 2
	DefaultGeminiBreakerFailures   = 5
	DefaultGeminiBreakerCooldown   = 60
	DefaultGeminiInstruction       = "You are a helpful assistant in a group chat. Answer clearly and concisely."

	DefaultDBPath             = "storage.db"
	DefaultMaxHistoryMessages = 100
	DefaultRetentionDays      = 30

	DefaultHTTPAddr = ":8080"

	DefaultNormalizerMode = "response"
)

// Default scheduled tasks, keyed by the names the task registry uses.
var defaultTasks = map[string]any{
	"sql_maintenance": map[string]any{
		"enabled":  true,
		"schedule": "0 0 3 * * *",
	},
	"history_retention": map[string]any{
		"enabled":  true,
		"schedule": "0 30 3 * * *",
	},
}

var defaultMessages = map[string]string{
	"welcome":              "I'm ready. Mention @botname in a group message and I'll answer in plain text.",
	"help":                 "Mention @botname to ask a question.\n/plain <text> strips markdown from text or from the message you reply to.\n/list <text> normalizes list markers. Use /list renumber to renumber ordered items.",
	"unauthorized":         "You are not authorized to use this command.",
	"general_error":        "An error occurred. Please try again later.",
	"reset_confirm":        "History has been reset.",
	"reset_error":          "Failed to reset history.",
	"reset_timeout":        "Resetting history timed out. Please try again.",
	"mention_no_prompt":    "Please include a question when you mention me.",
	"empty_reply_fallback": "I couldn't come up with an answer. Could you rephrase?",
	"plain_usage":          "Send /plain followed by markdown text, or reply to a message with /plain.",
	"list_usage":           "Send /list followed by a markdown list, or reply to a message with /list.",
}

// setDefaults registers defaults for every key, including secrets with empty
// values so environment overrides are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)
	v.SetDefault("telegram.max_message_length", DefaultMaxMessageLength)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.system_instruction", DefaultGeminiInstruction)
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("gemini.retry_delay_seconds", DefaultGeminiRetryDelaySeconds)
	v.SetDefault("gemini.breaker_failures", DefaultGeminiBreakerFailures)
	v.SetDefault("gemini.breaker_cooldown_seconds", DefaultGeminiBreakerCooldown)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.max_history_messages", DefaultMaxHistoryMessages)
	v.SetDefault("database.retention_days", DefaultRetentionDays)

	v.SetDefault("scheduler.tasks", defaultTasks)

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.addr", DefaultHTTPAddr)

	v.SetDefault("normalizer.mode", DefaultNormalizerMode)
	v.SetDefault("normalizer.renumber_lists", false)

	for key, msg := range defaultMessages {
		v.SetDefault("messages."+key, msg)
	}
}
