// runenhance runs the page-enhancement chain on a single image and
// writes the result next to it. Useful for eyeballing what the
// extraction model actually receives.
package main

import (
	"context"
	"image/png"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/tripfolio/trip-extractor/internal/document"
	"github.com/tripfolio/trip-extractor/internal/enhance"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runenhance <image-file>")
		os.Exit(2)
	}
	path := os.Args[1]

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read image", "path", path, "error", err)
		os.Exit(1)
	}

	norm := document.NewNormalizer(document.Config{}, logger)
	res, err := norm.Normalize(context.Background(), document.Uploaded{
		Content:   content,
		MediaType: mime.TypeByExtension(filepath.Ext(path)),
	})
	if err != nil {
		logger.Error("normalize", "error", err)
		os.Exit(1)
	}

	enhancer := enhance.NewEnhancer(enhance.Config{}, logger)
	out := enhancer.Enhance(res.Pages[0])
	logger.Info("enhanced", "strategy", out.Strategy, "note", out.Note)

	ext := filepath.Ext(path)
	outPath := strings.TrimSuffix(path, ext) + ".enhanced.png"
	f, err := os.Create(outPath)
	if err != nil {
		logger.Error("create output", "path", outPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, out.Page.Image); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
	logger.Info("wrote", "path", outPath)
}
