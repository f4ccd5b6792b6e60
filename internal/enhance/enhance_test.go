package enhance

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfolio/trip-extractor/internal/document"
)

// lowContrastPage builds a gradient confined to a narrow luminance band,
// the shape of a washed-out photographed page.
func lowContrastPage(w, h int) document.Page {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = uint8(100 + (x+y)*50/(w+h))
		}
	}
	return document.NewPage(img, 0)
}

func grayRange(img image.Image) (lo, hi uint8) {
	g, ok := img.(*image.Gray)
	if !ok {
		panic("expected gray image")
	}
	lo, hi = 255, 0
	b := g.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+b.Dx()] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

func TestEnhanceWidensLowContrast(t *testing.T) {
	e := NewEnhancer(Config{}, nil)
	page := lowContrastPage(128, 128)

	before := page.Image
	bl, bh := grayRange(before)

	out := e.Enhance(page)
	require.Equal(t, "adaptive", out.Strategy)
	assert.Empty(t, out.Note)
	assert.Equal(t, page.Index, out.Page.Index)

	al, ah := grayRange(out.Page.Image)
	assert.Greater(t, int(ah)-int(al), int(bh)-int(bl),
		"equalization should widen the luminance range")
}

func TestEnhanceSmallImageDegradesToStretch(t *testing.T) {
	e := NewEnhancer(Config{}, nil)
	// Too small for per-tile histograms, but has tonal spread.
	out := e.Enhance(lowContrastPage(20, 20))

	assert.Equal(t, "stretch", out.Strategy)
	assert.Contains(t, out.Note, "degraded")
}

func TestEnhanceDegenerateInputIsIdentity(t *testing.T) {
	e := NewEnhancer(Config{}, nil)

	uniform := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range uniform.Pix {
		uniform.Pix[i] = 128
	}
	page := document.NewPage(uniform, 3)

	out := e.Enhance(page)
	assert.Equal(t, "identity", out.Strategy)
	assert.NotEmpty(t, out.Note)
	assert.Equal(t, page.Image, out.Page.Image)
	assert.Equal(t, 3, out.Page.Index)
}

func TestEnhanceNeverPanics(t *testing.T) {
	e := NewEnhancer(Config{}, nil)

	pages := []document.Page{
		document.NewPage(image.NewGray(image.Rect(0, 0, 1, 1)), 0),
		document.NewPage(image.NewGray(image.Rect(0, 0, 0, 0)), 0),
		document.NewPage(image.NewRGBA(image.Rect(0, 0, 17, 3)), 0),
		lowContrastPage(65, 129),
	}
	for _, p := range pages {
		assert.NotPanics(t, func() {
			out := e.Enhance(p)
			assert.NotNil(t, out.Page.Image)
		})
	}
}

func TestToGray8ReoriginsSubImages(t *testing.T) {
	base := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range base.Pix {
		base.Pix[i] = uint8(i % 251)
	}
	sub := base.SubImage(image.Rect(20, 20, 80, 80)).(*image.Gray)

	g := toGray8(sub)
	assert.Equal(t, image.Point{}, g.Rect.Min)
	assert.Equal(t, 60, g.Rect.Dx())
	assert.Equal(t, 60, g.Rect.Dy())
	assert.Equal(t, base.GrayAt(20, 20), g.GrayAt(0, 0))
	assert.Equal(t, base.GrayAt(79, 79), g.GrayAt(59, 59))
}

func TestEnhancePreservesDimensions(t *testing.T) {
	e := NewEnhancer(Config{}, nil)
	page := lowContrastPage(200, 96)

	out := e.Enhance(page)
	assert.Equal(t, 200, out.Page.Width)
	assert.Equal(t, 96, out.Page.Height)
}
