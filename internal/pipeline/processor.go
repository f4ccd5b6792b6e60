// Package pipeline wires the extraction stages into the inbound
// process(UploadedDocument) -> TravelRecord operation.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tripfolio/trip-extractor/internal/common"
	"github.com/tripfolio/trip-extractor/internal/document"
	"github.com/tripfolio/trip-extractor/internal/enhance"
	"github.com/tripfolio/trip-extractor/internal/llm"
	"github.com/tripfolio/trip-extractor/internal/ocr"
	"github.com/tripfolio/trip-extractor/internal/record"
)

// prepConcurrency bounds the per-page enhance+OCR fan-out.
const prepConcurrency = 4

// minEmbeddedText is the shortest text layer treated as usable. Scanned
// PDFs often carry a few stray characters of artifact text; below this
// the page goes to the recognizer instead.
const minEmbeddedText = 32

// Processor coordinates normalize -> enhance/OCR -> model -> build.
// It holds no per-invocation state; concurrent invocations only share
// the extractor's model-selection cache.
type Processor struct {
	Logger     *slog.Logger
	Normalizer *document.Normalizer
	Enhancer   *enhance.Enhancer
	Recognizer ocr.Recognizer
	Extractor  llm.TravelExtractor
	Builder    *record.Builder
}

func NewProcessor(
	logger *slog.Logger,
	normalizer *document.Normalizer,
	enhancer *enhance.Enhancer,
	recognizer ocr.Recognizer,
	extractor llm.TravelExtractor,
	builder *record.Builder,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:     logger,
		Normalizer: normalizer,
		Enhancer:   enhancer,
		Recognizer: recognizer,
		Extractor:  extractor,
		Builder:    builder,
	}
}

// Process runs the full pipeline on one uploaded document. Errors follow
// the pipeline taxonomy; enhancement and OCR problems never fail the
// invocation, they surface as notes on the record.
func (p *Processor) Process(ctx context.Context, up document.Uploaded) (record.TravelRecord, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	norm, err := p.Normalizer.Normalize(ctx, up)
	if err != nil {
		p.Logger.Error("pipeline.normalize.failed", "req_id", rid, "error", err)
		return record.TravelRecord{}, err
	}
	p.Logger.Info("pipeline.normalize.ok",
		"req_id", rid, "format", string(norm.Format), "pages", len(norm.Pages))

	pages, ocrText, prepNotes, err := p.preparePages(ctx, rid, norm.Pages)
	if err != nil {
		return record.TravelRecord{}, err
	}
	notes := append(norm.Notes, prepNotes...)

	encoded, err := llm.EncodePages(pages)
	if err != nil {
		// Pages decoded fine but re-encoding failed: treat as corrupt
		// input rather than a model failure.
		return record.TravelRecord{}, common.CorruptDocumentError(err)
	}

	raw, modelName, err := p.Extractor.ExtractRaw(ctx, llm.ExtractRequest{
		Pages:     encoded,
		OCRText:   ocrText,
		RequestID: rid,
	})
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "req_id", rid, "error", err)
		return record.TravelRecord{}, err
	}

	rec, err := p.Builder.Build(record.Input{
		Raw:     raw,
		OCRText: ocrText,
		Notes:   notes,
	})
	if err != nil {
		p.Logger.Error("pipeline.build.failed", "req_id", rid, "model", modelName, "error", err)
		return record.TravelRecord{}, err
	}

	p.Logger.Info("pipeline.process.ok",
		"req_id", rid,
		"model", modelName,
		"pages", len(pages),
		"title", rec.Title,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// preparePages runs enhancement and gated OCR for every page
// concurrently, preserving document order in both the page list and the
// concatenated recognized text.
func (p *Processor) preparePages(ctx context.Context, rid string, in []document.Page) ([]document.Page, string, []string, error) {
	type prepped struct {
		page  document.Page
		text  string
		notes []string
	}

	results := make([]prepped, len(in))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(prepConcurrency)
	for i, page := range in {
		eg.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			out := enhance.Outcome{Page: page, Strategy: "identity"}
			if p.Enhancer != nil {
				out = p.Enhancer.Enhance(page)
			}
			pr := prepped{page: out.Page}
			if out.Note != "" {
				pr.notes = append(pr.notes, out.Note)
			}

			// A usable embedded text layer beats rasterized OCR.
			if embedded := strings.TrimSpace(page.Text); len(embedded) >= minEmbeddedText {
				pr.text = ocr.Normalize(page.Text)
			} else if p.Recognizer != nil {
				rec := p.Recognizer.Recognize(gctx, out.Page)
				if rec.Attempted {
					pr.text = rec.Text
				} else if rec.Note != "" {
					pr.notes = append(pr.notes, rec.Note)
				}
			}

			results[i] = pr
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, "", nil, err
	}

	pages := make([]document.Page, len(results))
	var texts []string
	var notes []string
	for i, r := range results {
		pages[i] = r.page
		if strings.TrimSpace(r.text) != "" {
			texts = append(texts, r.text)
		}
		notes = append(notes, r.notes...)
	}

	p.Logger.Debug("pipeline.prepare.ok",
		"req_id", rid, "pages", len(pages), "ocr_text_len", len(strings.Join(texts, "")))
	return pages, strings.Join(texts, "\n\f\n"), notes, nil
}
