package gemini

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// DefaultCandidates is the priority-ordered model identifier list probed
// during discovery. Flash variants first: fastest and cheapest, and the
// ones that handle document images well.
var DefaultCandidates = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-1.5-pro",
	"gemini-1.5-pro-latest",
	"gemini-2.0-flash-exp",
	"gemini-2.5-flash",
	"gemini-pro-vision",
	"gemini-pro",
}

// Config for the Gemini client.
type Config struct {
	APIKey      string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL     string        // default https://generativelanguage.googleapis.com/v1beta
	Candidates  []string      // priority-ordered identifiers; empty = DefaultCandidates
	Timeout     time.Duration // http client timeout
	MaxAttempts int           // bounded retry on transient errors
	RetryBase   time.Duration // first backoff step, doubled per attempt
}

type Client struct {
	cfg       Config
	http      *http.Client
	logger    *slog.Logger
	selection *ModelSelection

	probeMu      sync.Mutex
	probeResults map[string]string
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if len(cfg.Candidates) == 0 {
		cfg.Candidates = DefaultCandidates
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
		selection: NewModelSelection(),
	}
}

// Selection exposes the shared model-selection state, mainly for tests
// and for wiring several clients to one process-wide cache.
func (c *Client) Selection() *ModelSelection {
	return c.selection
}
