package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"github.com/tripfolio/trip-extractor/internal/common"
	"github.com/tripfolio/trip-extractor/internal/document"
	"github.com/tripfolio/trip-extractor/internal/enhance"
	"github.com/tripfolio/trip-extractor/internal/llm/gemini"
	"github.com/tripfolio/trip-extractor/internal/ocr"
	"github.com/tripfolio/trip-extractor/internal/pipeline"
	"github.com/tripfolio/trip-extractor/internal/record"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "tripextract <document-file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read document", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	ctx = common.WithRequestID(ctx, uuid.New().String())

	proc := pipeline.NewProcessor(
		logger,
		document.NewNormalizer(document.Config{MaxPages: cfg.Pipeline.MaxPDFPages}, logger),
		enhance.NewEnhancer(enhance.Config{}, logger),
		ocr.NewExtractor(ocr.Config{
			Tesseract:     cfg.OCR.Tesseract,
			TesseractLang: cfg.OCR.TesseractLang,
			TessdataDir:   cfg.OCR.TessdataDir,
			Timeout:       cfg.OCR.Timeout,
		}, logger),
		gemini.NewClient(gemini.Config{
			APIKey:      cfg.Model.APIKey,
			BaseURL:     cfg.Model.BaseURL,
			Candidates:  cfg.Model.Candidates,
			Timeout:     cfg.Model.Timeout,
			MaxAttempts: cfg.Model.MaxAttempts,
		}, logger),
		record.NewBuilder(record.Config{DefaultZone: cfg.Pipeline.DefaultZone}, logger),
	)

	start := time.Now()
	rec, err := proc.Process(ctx, document.Uploaded{
		Content:   content,
		MediaType: mime.TypeByExtension(filepath.Ext(path)),
	})
	if err != nil {
		logger.Error("extraction failed",
			"path", path, "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"title", rec.Title,
		"start", rec.Start.Format(time.RFC3339),
		"zone", rec.StartZone,
		"notes", len(rec.Notes),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		logger.Error("encode record", "error", err)
		os.Exit(1)
	}
}
