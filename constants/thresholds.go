package constants

// Pipeline tuning values shared across packages.
const (
	// RenderDPI is the fixed density PDF pages are rasterized at. High
	// enough for OCR on ticket-sized text, low enough to bound memory.
	RenderDPI = 200

	// MaxPageEdge caps the longer edge of any decoded page; larger
	// inputs are downscaled before enhancement.
	MaxPageEdge = 2200

	// MinOCRArea is the pixel area below which OCR is skipped. Images
	// this small are almost always logos or thumbnails.
	MinOCRArea = 150 * 150

	// MaxPDFPages bounds how many pages of a PDF are rendered and sent
	// to the extraction model.
	MaxPDFPages = 10
)
