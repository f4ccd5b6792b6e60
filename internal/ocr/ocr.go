// Package ocr wraps the tesseract binary behind a gated, failure-tolerant
// recognizer. OCR is an optional quality boost: any failure degrades to
// "not attempted" and the pipeline continues.
package ocr

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/tripfolio/trip-extractor/constants"
	"github.com/tripfolio/trip-extractor/internal/document"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	MinArea       int           // pixel-area gate; pages below it are skipped
	Timeout       time.Duration // per-invocation cap, default 20s
}

// Recognized is the gate outcome for one page. Attempted=false means OCR
// was skipped or failed; that is distinct from an attempted run that
// found no text.
type Recognized struct {
	Text      string
	Attempted bool
	Note      string // non-fatal reason when not attempted
}

// Recognizer is the pipeline-facing contract, stubbable in tests.
type Recognizer interface {
	Recognize(ctx context.Context, page document.Page) Recognized
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	lookOnce  sync.Once
	available bool
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.MinArea <= 0 {
		cfg.MinArea = constants.MinOCRArea
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Available reports whether the recognizer binary can be found. Resolved
// once per Extractor.
func (e *Extractor) Available() bool {
	e.lookOnce.Do(func() {
		_, err := exec.LookPath(e.cfg.Tesseract)
		e.available = err == nil
		if err != nil {
			e.logger.Info("ocr.unavailable", "binary", e.cfg.Tesseract)
		}
	})
	return e.available
}

// Recognize runs the gate and, when it passes, tesseract on the page.
// Never fatal: errors come back as Attempted=false with a note.
func (e *Extractor) Recognize(ctx context.Context, page document.Page) Recognized {
	if !e.Available() {
		return Recognized{Note: "text recognizer not installed; skipped"}
	}
	if page.Area() < e.cfg.MinArea {
		e.logger.Debug("ocr.gate.too_small",
			"page", page.Index, "area", page.Area(), "min_area", e.cfg.MinArea)
		return Recognized{Note: fmt.Sprintf("page %d too small for text recognition; skipped", page.Index+1)}
	}

	start := time.Now()
	text, err := e.runTesseract(ctx, page)
	if err != nil {
		e.logger.Warn("ocr.recognize.failed",
			"page", page.Index, "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return Recognized{Note: fmt.Sprintf("text recognition failed on page %d", page.Index+1)}
	}

	text = Normalize(text)
	e.logger.Debug("ocr.recognize.ok",
		"page", page.Index, "bytes", len(text),
		"duration_ms", time.Since(start).Milliseconds())
	return Recognized{Text: text, Attempted: true}
}

// runTesseract hands the page to tesseract through a temp PNG. The file
// lives only for the duration of the call.
func (e *Extractor) runTesseract(ctx context.Context, page document.Page) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "te-ocr-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			e.logger.Warn("ocr.tmp_cleanup_failed", "dir", tmpDir, "error", rerr)
		}
	}()

	path := filepath.Join(tmpDir, "page.png")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, page.Image); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode page: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
