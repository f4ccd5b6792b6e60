package constants

import "strings"

// Format is the processing path selected for an uploaded document.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
)

// Media types accepted at the pipeline boundary. The HTTP layer has
// already validated size; we re-check the type because the declared
// value is caller-supplied.
const (
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
	MediaTypeWEBP = "image/webp"
	MediaTypePDF  = "application/pdf"
)

var supportedMediaTypes = map[string]Format{
	MediaTypeJPEG: IMAGE,
	MediaTypePNG:  IMAGE,
	MediaTypeWEBP: IMAGE,
	MediaTypePDF:  PDF,
}

// MapMediaType returns the processing format for a declared media type.
// Parameters after ";" (e.g. charset) are ignored.
func MapMediaType(mediaType string) (Format, bool) {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	f, ok := supportedMediaTypes[mt]
	return f, ok
}

// SupportedMediaTypes lists the accepted declared media types.
func SupportedMediaTypes() []string {
	return []string{MediaTypeJPEG, MediaTypePNG, MediaTypeWEBP, MediaTypePDF}
}
