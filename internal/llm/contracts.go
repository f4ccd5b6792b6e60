package llm

import (
	"bytes"
	"context"
	"image/jpeg"

	"github.com/tripfolio/trip-extractor/internal/document"
)

// TravelFields is the normalized shape we ask the model for. All fields
// except title/start_date are optional; dates are ISO 8601 wall-clock
// times exactly as printed on the document (no zone conversion; zone
// resolution happens in the record builder).
type TravelFields struct {
	Title       string  `json:"title"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date,omitempty"`
	Location    string  `json:"location,omitempty"`
	Description string  `json:"description,omitempty"`
	Timezone    string  `json:"timezone,omitempty"` // only when stated in the document
	Confidence  float32 `json:"confidence,omitempty"`
}

// EncodedPage is one page image ready for the wire.
type EncodedPage struct {
	MIMEType string
	Data     []byte
	Index    int
}

// ExtractRequest is the payload for one model invocation. Built fresh
// per invocation; never cached.
type ExtractRequest struct {
	Pages     []EncodedPage
	OCRText   string // concatenated recognized text, empty when OCR never ran
	RequestID string
}

// TravelExtractor is the interface the pipeline depends on. It returns
// the model's raw output: tolerating malformed responses is the record
// builder's job, not the client's.
type TravelExtractor interface {
	ExtractRaw(ctx context.Context, req ExtractRequest) (raw string, modelName string, err error)
}

const jpegQuality = 85

// EncodePages renders pages as JPEG for the extraction request.
func EncodePages(pages []document.Page) ([]EncodedPage, error) {
	out := make([]EncodedPage, 0, len(pages))
	for _, p := range pages {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, p.Image, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, err
		}
		out = append(out, EncodedPage{MIMEType: "image/jpeg", Data: buf.Bytes(), Index: p.Index})
	}
	return out, nil
}
