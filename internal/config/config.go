package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
)

// Supported inference providers.
const (
	AIProviderGemini = "gemini"
	AIProviderOpenAI = "openai"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName   string
	AppEnv    string
	AppPort   string
	LogLevel  string
	JWTSecret string
	JWTTTL    time.Duration

	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	EventSubjectBase  string
	DashboardCacheTTL time.Duration

	AIProvider      string
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AITimeout       time.Duration
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32

	EssayMinLines      int
	EssayMinCharacters int
	EssayMaxCharacters int

	AuditRateLimit  int
	AuditRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIModel returns the model name of the selected provider.
func (c Config) AIModel() string {
	if c.AIProvider == AIProviderOpenAI {
		return c.OpenAIModel
	}
	return c.GeminiModel
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AUDITOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Auditor API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("events.subject_base", "auditor")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("ai.provider", AIProviderGemini)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.top_p", 0.8)
	v.SetDefault("ai.top_k", 40)
	v.SetDefault("ai.max_output_tokens", 8192)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("essay.min_lines", 7)
	v.SetDefault("essay.min_characters", 140)
	v.SetDefault("essay.max_characters", 20000)
	v.SetDefault("audit.rate_limit", 5)
	v.SetDefault("audit.rate_window", "1m")

	durations := map[string]time.Duration{}
	for _, key := range []string{"jwt.ttl", "dashboard.cache_ttl", "ai.timeout", "audit.rate_window"} {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("invalid %s: must be positive", key)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		LogLevel:           strings.ToLower(v.GetString("log.level")),
		JWTSecret:          v.GetString("jwt.secret"),
		JWTTTL:             durations["jwt.ttl"],
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		EventSubjectBase:   v.GetString("events.subject_base"),
		DashboardCacheTTL:  durations["dashboard.cache_ttl"],
		AIProvider:         strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		GeminiAPIKey:       v.GetString("gemini.api_key"),
		GeminiModel:        v.GetString("gemini.model"),
		OpenAIAPIKey:       v.GetString("openai.api_key"),
		OpenAIModel:        v.GetString("openai.model"),
		OpenAIBaseURL:      v.GetString("openai.base_url"),
		AITimeout:          durations["ai.timeout"],
		Temperature:        float32(v.GetFloat64("ai.temperature")),
		TopP:               float32(v.GetFloat64("ai.top_p")),
		TopK:               v.GetInt32("ai.top_k"),
		MaxOutputTokens:    v.GetInt32("ai.max_output_tokens"),
		EssayMinLines:      v.GetInt("essay.min_lines"),
		EssayMinCharacters: v.GetInt("essay.min_characters"),
		EssayMaxCharacters: v.GetInt("essay.max_characters"),
		AuditRateLimit:     v.GetInt("audit.rate_limit"),
		AuditRateWindow:    durations["audit.rate_window"],
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.AIProvider {
	case AIProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Config{}, fmt.Errorf("gemini api key must be provided")
		}
	case AIProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Config{}, fmt.Errorf("openai api key must be provided")
		}
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.EssayMinLines < auditor.DefaultMinLines {
		return Config{}, fmt.Errorf("essay min lines must be at least %d, got %d", auditor.DefaultMinLines, cfg.EssayMinLines)
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}

	return cfg, nil
}
