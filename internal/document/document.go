package document

import (
	"image"

	"github.com/tripfolio/trip-extractor/constants"
)

// Uploaded is the raw upload as handed over by the request layer.
// Immutable once received; never persisted.
type Uploaded struct {
	Content   []byte
	MediaType string // declared by the caller; may be empty or wrong
}

// Page is one decoded raster page of the document, in document order.
type Page struct {
	Image  image.Image
	Width  int
	Height int
	Index  int // 0-based page index

	// Text is the page's selectable text layer, present only for digital
	// PDFs. More accurate than OCR when it exists.
	Text string
}

// Area returns the pixel area of the page.
func (p Page) Area() int {
	return p.Width * p.Height
}

// NewPage wraps a decoded image as a Page.
func NewPage(img image.Image, index int) Page {
	b := img.Bounds()
	return Page{Image: img, Width: b.Dx(), Height: b.Dy(), Index: index}
}

// Result is the normalizer output: ordered pages plus non-fatal notes
// (e.g. a page-count truncation).
type Result struct {
	Pages  []Page
	Format constants.Format
	Notes  []string
}
