package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the extraction task. Kept separate from the user
// prompt so providers that support a system role can use it directly.
const SystemPrompt = "You are a travel document parser. You read flight tickets, boarding passes, " +
	"bus and train tickets, and hotel confirmations, in any language, and return ONLY JSON " +
	"matching the provided JSON Schema. If the document is not in English, translate the " +
	"extracted values to English."

// BuildUserPrompt composes the instruction sent alongside the page
// images. The time-handling rules mirror how documents print times: wall
// clock, local to the departure location, never shifted.
func BuildUserPrompt(ocrText string, pageCount int) string {
	parts := []string{
		"Extract travel information from this document. It could be a flight ticket, bus ticket, train ticket, hotel reservation, or other travel document.",
		"",
		"Return the information in this exact JSON format:",
		`{`,
		`  "title": "[Type] from [departure] to [destination] (e.g., 'Flight from Paris to London'); for hotels, '[Hotel name], [city]'",`,
		`  "start_date": "ISO 8601 datetime (YYYY-MM-DDTHH:MM:SS) with the EXACT travel date and time. Use the TRAVEL date, never an invoice or booking date.",`,
		`  "end_date": "ISO 8601 datetime for arrival/check-out, or omit if the document shows none",`,
		`  "location": "destination or venue with full details as written (address, terminal, platform)",`,
		`  "description": "comprehensive details: type, ticket/booking numbers, company, full route, passenger names, price, important notes",`,
		`  "timezone": "the timezone ONLY if the document states one explicitly (IANA name or UTC offset); otherwise omit"`,
		`}`,
		"",
		"CRITICAL TIME HANDLING:",
		"- Extract times EXACTLY as printed (a printed '11:00' is 11:00:00, never 12:00:00).",
		"- Do NOT apply timezone conversions or add/subtract hours.",
		"- Never invent a timezone; omit the field unless the document prints one.",
		"",
		"Other rules:",
		"- Use the correct year for the travel date.",
		"- Include all ticket numbers, booking references, order numbers and trip IDs you can see.",
		"- Translate non-English values to English.",
		"- If a field is not present, omit it entirely. Never output null.",
		"- Return ONLY valid JSON, no other text.",
	}

	if pageCount > 1 {
		parts = append(parts, "",
			fmt.Sprintf("The document has %d pages, supplied in order. The critical information may be on any page.", pageCount))
	}

	ocr := strings.TrimSpace(ocrText)
	if ocr != "" {
		parts = append(parts, "", "Recognized text from the document (may contain OCR errors; the images are authoritative):")
		if len(ocr) > 4000 {
			parts = append(parts, ocr[:4000], "…(truncated)")
		} else {
			parts = append(parts, ocr)
		}
	}

	return strings.Join(parts, "\n")
}
