package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")

	cfg := LoadConfig()
	assert.Equal(t, 10, cfg.Pipeline.MaxPDFPages)
	assert.Equal(t, "tesseract", cfg.OCR.Tesseract)
	assert.Equal(t, "eng", cfg.OCR.TesseractLang)
	assert.Equal(t, 20*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 3, cfg.Model.MaxAttempts)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("MAX_PDF_PAGES", "5")
	t.Setenv("DEFAULT_TIMEZONE", "Europe/Berlin")
	t.Setenv("OCR_TIMEOUT", "45s")
	t.Setenv("GEMINI_MAX_ATTEMPTS", "7")

	cfg := LoadConfig()
	assert.Equal(t, 5, cfg.Pipeline.MaxPDFPages)
	assert.Equal(t, "Europe/Berlin", cfg.Pipeline.DefaultZone)
	assert.Equal(t, 45*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, 7, cfg.Model.MaxAttempts)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_PDF_PAGES", "lots")
	t.Setenv("OCR_TIMEOUT", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 10, cfg.Pipeline.MaxPDFPages)
	assert.Equal(t, 20*time.Second, cfg.OCR.Timeout)
}

func TestValidateRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg := LoadConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
