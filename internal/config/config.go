package config

import (
	"os"
	"strconv"
)

// Config collects every environment-supplied setting. Validation of
// required values happens at the point of first use: the completion
// client, the telegram bot and the mail agent each check what they need.
type Config struct {
	LogLevel string

	// Completion service
	ModelName    string
	Temperature  float64
	GeminiAPIKey string
	GCPProject   string
	GCPLocation  string
	UseMockLLM   bool // true = scripted replies, useful for dev

	// Memory store
	StorageBackend string // "sqlite" or "memory"
	MemoryDBPath   string

	// Persona
	ProfilePath    string
	DefaultAgentID string

	// Front-ends
	TelegramToken string
	HTTPPort      string

	// Mail provider
	GmailCredentialsPath string
	GmailTokenPath       string
	SenderAddress        string
	EmailSummaryLimit    int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Load reads all env vars and builds the config.
func Load() *Config {
	return &Config{
		LogLevel: getEnv("MINIME_LOG_LEVEL", "info"),

		ModelName:    getEnv("MINIME_MODEL_NAME", "gemini-2.5-flash"),
		Temperature:  getFloatEnv("MINIME_TEMPERATURE", 0.3),
		GeminiAPIKey: getEnv("MINIME_GEMINI_API_KEY", ""),
		GCPProject:   getEnv("MINIME_GCP_PROJECT", ""),
		GCPLocation:  getEnv("MINIME_GCP_LOCATION", ""),
		UseMockLLM:   getBoolEnv("MINIME_USE_MOCK_LLM", false),

		StorageBackend: getEnv("MINIME_STORAGE_BACKEND", "sqlite"),
		MemoryDBPath:   getEnv("MINIME_MEMORY_DB_PATH", "memory.db"),

		ProfilePath:    getEnv("MINIME_PROFILE_PATH", ""),
		DefaultAgentID: getEnv("MINIME_DEFAULT_AGENT_ID", "main_assistant"),

		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		HTTPPort:      getEnv("PORT", "8080"),

		GmailCredentialsPath: getEnv("GMAIL_CREDENTIALS_PATH", "gmail_credentials.json"),
		GmailTokenPath:       getEnv("GMAIL_TOKEN_PATH", "gmail_token.json"),
		SenderAddress:        getEnv("EMAIL_SENDER_ADDRESS", ""),
		EmailSummaryLimit:    getIntEnv("EMAIL_SUMMARY_LIMIT", 10),
	}
}
