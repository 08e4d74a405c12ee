package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisContextDB int    `mapstructure:"REDIS_CONTEXT_DB"`

	// Semantic extractor (Gemini) configuration.
	GeminiAPIKey        string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string `mapstructure:"GEMINI_MODEL"`
	ExtractionTimeoutMS int    `mapstructure:"EXTRACTION_TIMEOUT_MS"`

	// Artifact store selection: "mongo" or "file".
	ArtifactStore string `mapstructure:"ARTIFACT_STORE"`
	DatadumpDir   string `mapstructure:"DATADUMP_DIR"`

	// Conversation engine options. Loaded once into an immutable
	// conversation.Settings value at startup; never mutated afterwards.
	ConfirmationMode        string   `mapstructure:"CONFIRMATION_MODE"` // IMMEDIATE or EXPLICIT
	AngerThreshold          float64  `mapstructure:"ANGER_THRESHOLD"`
	ConfirmationKeywords    []string `mapstructure:"CONFIRMATION_KEYWORDS"`
	MaxConfirmationAttempts int      `mapstructure:"MAX_CONFIRMATION_ATTEMPTS"`
	AttemptCapPolicy        string   `mapstructure:"ATTEMPT_CAP_POLICY"` // remain or auto_proceed
	RetroactiveScanLimit    int      `mapstructure:"RETROACTIVE_SCAN_LIMIT"`
	ContextTTLMinutes       int      `mapstructure:"CONTEXT_TTL_MINUTES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONTEXT_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("EXTRACTION_TIMEOUT_MS", 5000)
	viper.SetDefault("ARTIFACT_STORE", "file")
	viper.SetDefault("DATADUMP_DIR", "./datadump")
	viper.SetDefault("CONFIRMATION_MODE", "IMMEDIATE")
	viper.SetDefault("ANGER_THRESHOLD", 8.0)
	viper.SetDefault("CONFIRMATION_KEYWORDS", []string{
		"yes", "confirm", "ok", "okay", "book", "proceed", "finalize", "haan", "haa",
	})
	viper.SetDefault("MAX_CONFIRMATION_ATTEMPTS", 3)
	viper.SetDefault("ATTEMPT_CAP_POLICY", "auto_proceed")
	viper.SetDefault("RETROACTIVE_SCAN_LIMIT", 4)
	viper.SetDefault("CONTEXT_TTL_MINUTES", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return AppConfig.Env == "production"
}
