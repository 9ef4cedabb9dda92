package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// ConversionConfig holds the default conversion parameters. CLI flags override them.
type ConversionConfig struct {
	Size                string
	PreserveOrientation bool
	Brightness          float64
	Contrast            float64
	Sharpness           float64
	Quality             int
	SamplePages         int
	TempDir             string
}

// SourceConfig configures fetching of remote inputs.
type SourceConfig struct {
	AWSRegion   string
	S3Endpoint  string
	AccessKeyID string
	SecretKey   string
	HTTPTimeout time.Duration
}

// Config is the top-level configuration.
type Config struct {
	Logging         LoggingConfig
	Axiom           AxiomConfig
	Conversion      ConversionConfig
	Source          SourceConfig
	MetricsTextfile string
}

// Load reads an optional .env file from the working directory and then the environment.
func Load() Config {
	// Missing .env is the normal case.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	// Logging defaults
	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", "true")),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "20"), 20),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "3"), 3),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	// Axiom defaults
	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_pdfbw",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Conversion = ConversionConfig{
		Size:                getEnv("PDFBW_SIZE", "original"),
		PreserveOrientation: parseBool(getEnv("PDFBW_PRESERVE_ORIENTATION", "true")),
		Brightness:          parseFloat(getEnv("PDFBW_BRIGHTNESS", "1.0"), 1.0),
		Contrast:            parseFloat(getEnv("PDFBW_CONTRAST", "1.0"), 1.0),
		Sharpness:           parseFloat(getEnv("PDFBW_SHARPNESS", "1.0"), 1.0),
		Quality:             parseInt(getEnv("PDFBW_QUALITY", "75"), 75),
		SamplePages:         parseInt(getEnv("PDFBW_SAMPLE_PAGES", "3"), 3),
		TempDir:             getEnv("PDFBW_TEMP_DIR", ""),
	}

	cfg.Source = SourceConfig{
		AWSRegion:   getEnv("AWS_REGION", ""),
		S3Endpoint:  getEnv("AWS_S3_ENDPOINT", ""),
		AccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		HTTPTimeout: parseDuration(getEnv("HTTP_TIMEOUT", "60s"), 60*time.Second),
	}

	cfg.MetricsTextfile = getEnv("METRICS_TEXTFILE", "")

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
