package document

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfolio/trip-extractor/constants"
	"github.com/tripfolio/trip-extractor/internal/common"
	"github.com/tripfolio/trip-extractor/internal/document/documenttest"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

func TestNormalizeImageSinglePage(t *testing.T) {
	n := NewNormalizer(Config{}, nil)

	res, err := n.Normalize(context.Background(), Uploaded{
		Content:   encodePNG(t, solidImage(320, 240)),
		MediaType: constants.MediaTypePNG,
	})
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	assert.Equal(t, constants.IMAGE, res.Format)
	assert.Equal(t, 0, res.Pages[0].Index)
	assert.Equal(t, 320, res.Pages[0].Width)
	assert.Equal(t, 240, res.Pages[0].Height)
}

func TestNormalizeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(100, 80), nil))

	n := NewNormalizer(Config{}, nil)
	res, err := n.Normalize(context.Background(), Uploaded{
		Content:   buf.Bytes(),
		MediaType: constants.MediaTypeJPEG,
	})
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
}

func TestNormalizeSniffsMissingMediaType(t *testing.T) {
	n := NewNormalizer(Config{}, nil)

	res, err := n.Normalize(context.Background(), Uploaded{
		Content: encodePNG(t, solidImage(64, 64)),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, res.Format)
}

func TestNormalizeCapsResolution(t *testing.T) {
	n := NewNormalizer(Config{MaxPageEdge: 100}, nil)

	res, err := n.Normalize(context.Background(), Uploaded{
		Content:   encodePNG(t, solidImage(400, 200)),
		MediaType: constants.MediaTypePNG,
	})
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	assert.Equal(t, 100, res.Pages[0].Width)
	assert.Equal(t, 50, res.Pages[0].Height)
}

func TestNormalizePDFPagesInOrder(t *testing.T) {
	n := NewNormalizer(Config{RenderDPI: 72}, nil)

	res, err := n.Normalize(context.Background(), Uploaded{
		Content:   documenttest.MinimalPDF(3),
		MediaType: constants.MediaTypePDF,
	})
	require.NoError(t, err)
	require.Len(t, res.Pages, 3)
	assert.Equal(t, constants.PDF, res.Format)
	for i, p := range res.Pages {
		assert.Equal(t, i, p.Index)
		assert.Greater(t, p.Width, 0)
		assert.Greater(t, p.Height, 0)
	}
	assert.Empty(t, res.Notes)
}

func TestNormalizePDFExtractsTextLayer(t *testing.T) {
	n := NewNormalizer(Config{RenderDPI: 72}, nil)

	res, err := n.Normalize(context.Background(), Uploaded{
		Content:   documenttest.TextPDF(2, "FLIGHT AB123 DEPARTS 2025-03-12 AT 07:00"),
		MediaType: constants.MediaTypePDF,
	})
	require.NoError(t, err)
	require.Len(t, res.Pages, 2)
	for _, p := range res.Pages {
		assert.Contains(t, p.Text, "AB123")
	}
}

func TestNormalizeBlankPDFHasNoTextLayer(t *testing.T) {
	n := NewNormalizer(Config{RenderDPI: 72}, nil)

	res, err := n.Normalize(context.Background(), Uploaded{
		Content:   documenttest.MinimalPDF(1),
		MediaType: constants.MediaTypePDF,
	})
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	assert.Empty(t, strings.TrimSpace(res.Pages[0].Text))
}

func TestNormalizePDFTruncatesWithNote(t *testing.T) {
	n := NewNormalizer(Config{RenderDPI: 72, MaxPages: 2}, nil)

	res, err := n.Normalize(context.Background(), Uploaded{
		Content:   documenttest.MinimalPDF(4),
		MediaType: constants.MediaTypePDF,
	})
	require.NoError(t, err)
	require.Len(t, res.Pages, 2)
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "first 2")
}

func TestNormalizeUnsupportedType(t *testing.T) {
	n := NewNormalizer(Config{}, nil)

	_, err := n.Normalize(context.Background(), Uploaded{
		Content:   []byte("just some plain text, definitely not an image"),
		MediaType: "text/plain",
	})
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestNormalizeCorruptInput(t *testing.T) {
	n := NewNormalizer(Config{}, nil)

	tests := []struct {
		name string
		up   Uploaded
	}{
		{"empty", Uploaded{MediaType: constants.MediaTypePNG}},
		{"garbage image bytes", Uploaded{Content: []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}, MediaType: constants.MediaTypePNG}},
		{"garbage pdf bytes", Uploaded{Content: []byte("%PDF-1.4 not really"), MediaType: constants.MediaTypePDF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(context.Background(), tt.up)
			assert.ErrorIs(t, err, common.ErrCorruptDocument)
		})
	}
}

func TestNormalizePDFHonorsContext(t *testing.T) {
	n := NewNormalizer(Config{RenderDPI: 72}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Normalize(ctx, Uploaded{
		Content:   documenttest.MinimalPDF(2),
		MediaType: constants.MediaTypePDF,
	})
	assert.ErrorIs(t, err, context.Canceled)
}
