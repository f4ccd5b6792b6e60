// Package documenttest provides fixtures for exercising the document
// normalizer without shipping binary test data.
package documenttest

import (
	"bytes"
	"fmt"
	"strings"
)

// MinimalPDF builds a syntactically valid PDF with the given number of
// blank pages.
func MinimalPDF(pages int) []byte {
	return buildPDF(pages, "")
}

// TextPDF builds a PDF whose pages each carry the given selectable text,
// the shape of a digitally produced booking confirmation.
func TextPDF(pages int, text string) []byte {
	return buildPDF(pages, text)
}

var textEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// buildPDF writes catalog, page tree, one content stream per page and,
// when text is set, a shared base-14 font. Object offsets in the xref
// table are computed while writing, so the output passes strict readers
// as well as relaxed ones.
func buildPDF(pages int, text string) []byte {
	var buf bytes.Buffer
	var offsets []int
	writeObj := func(s string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(s)
	}

	buf.WriteString("%PDF-1.4\n")

	fontObj := 3 + 2*pages
	resources := "<< >>"
	content := ""
	if text != "" {
		resources = fmt.Sprintf("<< /Font << /F1 %d 0 R >> >>", fontObj)
		content = fmt.Sprintf("BT /F1 12 Tf 20 100 Td (%s) Tj ET", textEscaper.Replace(text))
	}

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources %s /Contents %d 0 R >>\nendobj\n",
			3+i, resources, 3+pages+i))
	}
	for i := 0; i < pages; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			3+pages+i, len(content), content))
	}
	if text != "" {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n",
			fontObj))
	}

	xrefPos := buf.Len()
	size := len(offsets) + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xrefPos)
	return buf.Bytes()
}
