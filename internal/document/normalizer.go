package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/tripfolio/trip-extractor/constants"
	"github.com/tripfolio/trip-extractor/internal/common"
)

// Config tunes the normalizer. Zero values pick the shared defaults.
type Config struct {
	RenderDPI   int // PDF rasterization density
	MaxPageEdge int // longer-edge cap for decoded pages
	MaxPages    int // PDF page cap; extra pages are dropped with a note
}

// Normalizer turns an upload into an ordered, bounded sequence of pages.
// It is CPU-bound and performs no network I/O.
type Normalizer struct {
	cfg    Config
	logger *slog.Logger
}

func NewNormalizer(cfg Config, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = constants.RenderDPI
	}
	if cfg.MaxPageEdge <= 0 {
		cfg.MaxPageEdge = constants.MaxPageEdge
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = constants.MaxPDFPages
	}
	return &Normalizer{cfg: cfg, logger: logger}
}

// Normalize decodes the upload into at least one page, or fails with
// ErrUnsupportedFormat / ErrCorruptDocument. Page order is document order.
func (n *Normalizer) Normalize(ctx context.Context, up Uploaded) (Result, error) {
	if len(up.Content) == 0 {
		return Result{}, common.CorruptDocumentError(fmt.Errorf("empty document"))
	}

	format, ok := constants.MapMediaType(up.MediaType)
	if !ok {
		// The declared type is caller-supplied and often missing for
		// email attachments; fall back to content sniffing.
		sniffed := http.DetectContentType(up.Content)
		if format, ok = constants.MapMediaType(sniffed); ok {
			n.logger.Debug("normalize.sniffed_media_type",
				"declared", up.MediaType, "sniffed", sniffed)
		} else {
			return Result{}, common.UnsupportedFormatError(up.MediaType)
		}
	}

	switch format {
	case constants.PDF:
		return n.normalizePDF(ctx, up.Content)
	default:
		return n.normalizeImage(up.Content)
	}
}

func (n *Normalizer) normalizeImage(content []byte) (Result, error) {
	img, kind, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return Result{}, common.CorruptDocumentError(fmt.Errorf("decode image: %w", err))
	}
	img = n.capResolution(img)
	n.logger.Debug("normalize.image.ok", "kind", kind,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return Result{
		Pages:  []Page{NewPage(img, 0)},
		Format: constants.IMAGE,
	}, nil
}

func (n *Normalizer) normalizePDF(ctx context.Context, content []byte) (Result, error) {
	// Structural check first: pdfcpu gives precise malformed-PDF errors
	// before we hand the bytes to the rasterizer.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pageCount, err := api.PageCount(bytes.NewReader(content), conf)
	if err != nil {
		return Result{}, common.CorruptDocumentError(fmt.Errorf("validate pdf: %w", err))
	}
	if pageCount == 0 {
		return Result{}, common.CorruptDocumentError(fmt.Errorf("pdf has no pages"))
	}

	var notes []string
	renderCount := pageCount
	if renderCount > n.cfg.MaxPages {
		renderCount = n.cfg.MaxPages
		notes = append(notes, fmt.Sprintf("document has %d pages; only the first %d were processed", pageCount, renderCount))
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return Result{}, common.CorruptDocumentError(fmt.Errorf("open pdf: %w", err))
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			n.logger.Warn("normalize.pdf.close_error", "error", cerr)
		}
	}()

	pages := make([]Page, 0, renderCount)
	for i := 0; i < renderCount; i++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}
		img, err := doc.ImageDPI(i, float64(n.cfg.RenderDPI))
		if err != nil {
			return Result{}, common.CorruptDocumentError(fmt.Errorf("render page %d: %w", i+1, err))
		}
		page := NewPage(n.capResolution(img), i)
		// Digital PDFs carry a selectable text layer that beats OCR; a
		// failed extraction just leaves the page to the recognizer.
		if text, terr := doc.Text(i); terr == nil {
			page.Text = text
		} else {
			n.logger.Debug("normalize.pdf.text_layer_failed", "page", i, "error", terr)
		}
		pages = append(pages, page)
	}

	n.logger.Debug("normalize.pdf.ok", "pages", len(pages), "total_pages", pageCount, "dpi", n.cfg.RenderDPI)
	return Result{Pages: pages, Format: constants.PDF, Notes: notes}, nil
}

// capResolution downscales an image whose longer edge exceeds the cap.
// Decoding at a bounded resolution keeps per-page memory predictable for
// high-resolution photographs.
func (n *Normalizer) capResolution(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	edge := w
	if h > edge {
		edge = h
	}
	if edge <= n.cfg.MaxPageEdge {
		return img
	}
	scale := float64(n.cfg.MaxPageEdge) / float64(edge)
	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
