package common

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Vision  VisionConfig  `mapstructure:"vision"`
	GenAI   GenAIConfig   `mapstructure:"genai"`
	Batch   BatchConfig   `mapstructure:"batch"`
	JWT     JWTConfig     `mapstructure:"jwt"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr               string   `mapstructure:"addr"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig holds the local key-value store settings
type StorageConfig struct {
	Path string `mapstructure:"path"` // sqlite file; ":memory:" for ephemeral
}

// VisionConfig holds the OCR service settings
type VisionConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GenAIConfig holds the generative-text service settings
type GenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BatchConfig holds the receipt batch queue settings
type BatchConfig struct {
	Workers   int           `mapstructure:"workers"`
	QueueSize int           `mapstructure:"queue_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// JWTConfig holds demo session token settings
type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
	Issuer          string `mapstructure:"issuer"`
}

// LoadConfig reads configuration from an optional yaml file and the
// environment. A .env file is honored when present.
func LoadConfig() *Config {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")
	v.AutomaticEnv()

	// Sensible defaults so the binary works without a config file.
	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("storage.path", "elmvoice.db")
	v.SetDefault("vision.base_url", "https://vision.googleapis.com")
	v.SetDefault("vision.timeout", 30*time.Second)
	v.SetDefault("genai.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("genai.model", "gemini-1.5-pro-latest")
	v.SetDefault("genai.timeout", 45*time.Second)
	v.SetDefault("batch.workers", 1)
	v.SetDefault("batch.queue_size", 64)
	v.SetDefault("batch.timeout", 3*time.Minute)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "elmvoice")

	// Config file is optional.
	if err := v.ReadInConfig(); err != nil {
		log.Printf("no config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Environment overrides for secrets.
	if s := v.GetString("VISION_API_KEY"); s != "" {
		cfg.Vision.APIKey = s
	}
	if s := v.GetString("GEMINI_API_KEY"); s != "" {
		cfg.GenAI.APIKey = s
	}
	if s := v.GetString("JWT_SECRET"); s != "" {
		cfg.JWT.Secret = s
	}
	if cfg.JWT.Secret == "" {
		// Demo-grade auth; a fixed fallback keeps local runs friction-free.
		cfg.JWT.Secret = "elmvoice-dev-secret"
	}
	return &cfg
}

// Validate checks the settings the ingestion pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Vision.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "VISION_API_KEY is required", ErrInvalidInput)
	}
	if c.GenAI.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "server.addr is required", ErrInvalidInput)
	}
	return nil
}
