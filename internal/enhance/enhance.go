// Package enhance improves the legibility of photographed document pages
// before OCR and model extraction. Enhancement is best-effort: the chain
// always yields a page, degrading toward the unmodified input.
package enhance

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/tripfolio/trip-extractor/internal/document"
)

// Config tunes the adaptive strategy. Zero values pick defaults.
type Config struct {
	TileGrid  int     // tiles per axis for local equalization
	ClipLimit float64 // histogram clip multiple of the mean bin height
}

// Outcome reports which strategy produced the page. Note is non-empty
// when enhancement degraded below the preferred strategy.
type Outcome struct {
	Page     document.Page
	Strategy string
	Note     string
}

type strategy struct {
	name string
	// run returns (enhanced, true) or signals skip with false. A skip is
	// not an error; the next strategy in the chain is tried.
	run func(*image.Gray) (*image.Gray, bool)
}

type Enhancer struct {
	cfg    Config
	logger *slog.Logger
	chain  []strategy
}

func NewEnhancer(cfg Config, logger *slog.Logger) *Enhancer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TileGrid <= 0 {
		cfg.TileGrid = 8
	}
	if cfg.ClipLimit <= 0 {
		cfg.ClipLimit = 3.0
	}
	e := &Enhancer{cfg: cfg, logger: logger}
	e.chain = []strategy{
		{name: "adaptive", run: e.adaptiveEqualize},
		{name: "stretch", run: globalStretch},
	}
	return e
}

// Enhance runs the strategy chain on one page. It never returns an
// error: if every strategy skips or panics, the original page comes back
// unchanged with a note.
func (e *Enhancer) Enhance(page document.Page) Outcome {
	gray := toGray8(page.Image)

	for _, s := range e.chain {
		out, ok := e.runSafely(s, gray)
		if !ok {
			continue
		}
		oc := Outcome{Page: repage(page, out), Strategy: s.name}
		if s.name != e.chain[0].name {
			oc.Note = fmt.Sprintf("enhancement degraded to %s strategy", s.name)
		}
		return oc
	}

	return Outcome{
		Page:     page,
		Strategy: "identity",
		Note:     "image enhancement skipped; using original page",
	}
}

// runSafely converts a panicking strategy into a skip so a pathological
// buffer can never abort the pipeline.
func (e *Enhancer) runSafely(s strategy, in *image.Gray) (out *image.Gray, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("enhance.strategy_panic", "strategy", s.name, "panic", r)
			out, ok = nil, false
		}
	}()
	return s.run(in)
}

func repage(orig document.Page, img *image.Gray) document.Page {
	p := document.NewPage(img, orig.Index)
	p.Text = orig.Text
	return p
}

// toGray8 converts any decoded image to 8-bit single-channel luminance.
// The Gray color model clamps and rescales deeper channel layouts
// (Gray16, RGBA64) into the 8-bit range the strategies require.
func toGray8(src image.Image) *image.Gray {
	// Pass-through only for zero-origin images: the strategies index Pix
	// assuming Min == (0,0), which a sub-image view violates.
	if g, already := src.(*image.Gray); already && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, src.At(x, y))
		}
	}
	return dst
}
