package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig
	OCR      OCRConfig
	Model    ModelConfig
}

// PipelineConfig holds document-processing configuration
type PipelineConfig struct {
	MaxPDFPages int
	DefaultZone string // IANA zone assumed when the document carries no timezone cue
}

// OCRConfig holds text-recognizer configuration
type OCRConfig struct {
	Tesseract     string // binary name or absolute path
	TesseractLang string
	TessdataDir   string
	Timeout       time.Duration
}

// ModelConfig holds extraction-model configuration
type ModelConfig struct {
	APIKey      string
	BaseURL     string
	Candidates  []string // priority-ordered model identifiers; empty = built-in list
	Timeout     time.Duration
	MaxAttempts int
}

// LoadConfig loads configuration from environment variables. A .env file
// in the working directory is merged in first, if present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Pipeline: PipelineConfig{
			MaxPDFPages: getEnvAsInt("MAX_PDF_PAGES", 10),
			DefaultZone: getEnv("DEFAULT_TIMEZONE", ""),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 20*time.Second),
		},
		Model: ModelConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			BaseURL:     getEnv("GEMINI_BASE_URL", ""),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			MaxAttempts: getEnvAsInt("GEMINI_MAX_ATTEMPTS", 3),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Model.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrModelUnavailable)
	}
	if c.Pipeline.MaxPDFPages <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_PDF_PAGES must be positive", nil)
	}
	return nil
}
