// Package record turns raw extraction-model output into a validated,
// timezone-aware travel record.
package record

import "time"

// TravelRecord is the pipeline's output, ready for calendar-event
// creation. Start is always present and absolute; End, when present, is
// never before Start.
type TravelRecord struct {
	Title       string     `json:"title"`
	Start       time.Time  `json:"start"`
	StartZone   string     `json:"start_zone"`
	End         *time.Time `json:"end,omitempty"`
	EndZone     string     `json:"end_zone,omitempty"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`

	// Notes collects non-fatal anomalies from every pipeline stage:
	// degraded enhancement, skipped OCR, inferred timezones.
	Notes []string `json:"notes,omitempty"`
}

// AddNote appends a non-empty note.
func (r *TravelRecord) AddNote(note string) {
	if note != "" {
		r.Notes = append(r.Notes, note)
	}
}
