package record

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tripfolio/trip-extractor/internal/common"
	"github.com/tripfolio/trip-extractor/internal/llm"
)

// Config tunes the builder.
type Config struct {
	// DefaultZone is the requester's zone, used when the document
	// carries no timezone cue at all. Empty means UTC.
	DefaultZone string
}

// Builder parses raw model output into a TravelRecord. The input is
// untrusted free-form text: fields may be missing, renamed, wrapped in
// markdown fences or surrounded by prose.
type Builder struct {
	cfg    Config
	logger *slog.Logger
}

func NewBuilder(cfg Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cfg: cfg, logger: logger}
}

// Input carries the model output plus the fallback context gathered
// earlier in the pipeline.
type Input struct {
	Raw     string   // raw model response
	OCRText string   // recognized text, empty when OCR never ran
	Notes   []string // upstream non-fatal notes to carry onto the record
}

// Build produces a validated TravelRecord or fails with
// ErrExtractionFailed when neither a usable title nor start date-time
// can be derived from the model output or the recognized text.
func (b *Builder) Build(input Input) (TravelRecord, error) {
	rec := TravelRecord{Notes: append([]string(nil), input.Notes...)}

	fields := b.parseFields(input.Raw)

	// Start date-time: model field first, recognized text second.
	startStr := fields.StartDate
	if startStr == "" {
		if recovered, ok := fallbackStart(input.OCRText); ok {
			startStr = recovered
			rec.AddNote("start date recovered from recognized text, not from the model output")
		}
	}
	if startStr == "" && fields.Title == "" {
		return TravelRecord{}, fmt.Errorf("%w: no usable title or start date in model output", common.ErrExtractionFailed)
	}
	if startStr == "" {
		// A title alone cannot satisfy the record invariant: the start
		// must be an absolute instant.
		return TravelRecord{}, fmt.Errorf("%w: no usable start date in model output", common.ErrExtractionFailed)
	}

	// Zone cues: the model's stated zone wins; otherwise scan the
	// extracted fields and the source text.
	cueText := strings.Join([]string{fields.Location, fields.Title, fields.Description, input.OCRText}, "\n")
	zone := resolveZone(fields.Timezone, cueText, b.cfg.DefaultZone)

	start, startParsed := parseDateTime(startStr, zone.loc)
	if !startParsed.ok {
		return TravelRecord{}, fmt.Errorf("%w: unparseable start date %q", common.ErrExtractionFailed, startStr)
	}
	rec.Start = start
	if startParsed.explicitOffset {
		rec.StartZone = start.Location().String()
	} else {
		rec.StartZone = zone.name
		if zone.inferred() {
			rec.AddNote(zoneNote(zone))
		}
	}
	if !startParsed.hasTime {
		rec.AddNote("start time not stated; using midnight")
	}

	// End date-time is optional and dropped when inconsistent.
	if fields.EndDate != "" {
		b.attachEnd(&rec, fields.EndDate, zone)
	}

	rec.Title = fields.Title
	if rec.Title == "" {
		rec.Title = fallbackTitle(input.OCRText, fields.Location)
		rec.AddNote("title not stated; synthesized from document context")
	}
	rec.Location = fields.Location
	rec.Description = fields.Description

	b.logger.Debug("record.build.ok",
		"title", rec.Title,
		"start", rec.Start.Format(time.RFC3339),
		"zone", rec.StartZone,
		"zone_source", string(zone.source),
		"has_end", rec.End != nil,
		"notes", len(rec.Notes),
	)
	return rec, nil
}

// parseFields extracts and sanitizes the JSON object inside the raw
// model response. Any failure degrades to zero-valued fields; recovery
// and the final usability check happen in Build.
func (b *Builder) parseFields(raw string) llm.TravelFields {
	var fields llm.TravelFields

	candidate, ok := extractJSONObject(raw)
	if !ok {
		b.logger.Warn("record.parse.no_json", "raw_len", len(raw))
		return fields
	}

	sanitized, dropped, err := llm.NormalizeAndSanitizeJSON(candidate, b.logger)
	if err != nil {
		b.logger.Warn("record.parse.sanitize_failed", "error", err)
		return fields
	}
	if len(dropped) > 0 {
		b.logger.Debug("record.parse.sanitized", "dropped", dropped)
	}

	if err := llm.ValidateJSONAgainstSchema(llm.BuildTravelJSONSchema(), sanitized); err != nil {
		// Schema violations are logged, not fatal: partial output may
		// still hold a usable title or date.
		b.logger.Warn("record.parse.schema_violation", "error", err)
	}
	if err := json.Unmarshal(sanitized, &fields); err != nil {
		b.logger.Warn("record.parse.decode_failed", "error", err)
	}
	return fields
}

// attachEnd parses the end date-time and enforces the ordering
// invariant: an end before the start is dropped, never propagated.
func (b *Builder) attachEnd(rec *TravelRecord, endStr string, zone zoneResolution) {
	end, parsed := parseDateTime(endStr, zone.loc)
	if !parsed.ok {
		// Some models emit a bare clock time for same-day arrivals.
		if t, ok := parseClockTime(endStr); ok {
			end = time.Date(rec.Start.Year(), rec.Start.Month(), rec.Start.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, rec.Start.Location())
			if end.Before(rec.Start) {
				end = end.AddDate(0, 0, 1) // overnight arrival
			}
			parsed.ok = true
		}
	}
	if !parsed.ok {
		rec.AddNote(fmt.Sprintf("unparseable end date %q ignored", endStr))
		return
	}
	if end.Before(rec.Start) {
		rec.AddNote("end date-time earlier than start; end dropped")
		return
	}
	rec.End = &end
	if parsed.explicitOffset {
		rec.EndZone = end.Location().String()
	} else {
		rec.EndZone = zone.name
	}
}

func zoneNote(zone zoneResolution) string {
	switch zone.source {
	case zoneAirport:
		return fmt.Sprintf("timezone %s inferred from airport code, not stated explicitly", zone.name)
	case zoneCity:
		return fmt.Sprintf("timezone %s inferred from city name, not stated explicitly", zone.name)
	case zoneDefault:
		return fmt.Sprintf("no timezone cue in document; using configured default %s", zone.name)
	default:
		return "no timezone cue in document; using UTC"
	}
}

// parseResult reports how a date-time string was understood.
type parseResult struct {
	ok             bool
	hasTime        bool
	explicitOffset bool
}

var dateTimeLayouts = []struct {
	layout  string
	hasTime bool
	offset  bool
}{
	{time.RFC3339, true, true},
	{"2006-01-02T15:04:05Z0700", true, true},
	{"2006-01-02T15:04-07:00", true, true},
	{"2006-01-02T15:04:05", true, false},
	{"2006-01-02T15:04", true, false},
	{"2006-01-02 15:04:05", true, false},
	{"2006-01-02 15:04", true, false},
	{"2006-01-02", false, false},
}

// parseDateTime parses an ISO-ish date-time. Layouts without a zone
// suffix are interpreted in loc: the document's wall-clock time pinned
// to the resolved zone, never shifted.
func parseDateTime(s string, loc *time.Location) (time.Time, parseResult) {
	s = strings.TrimSpace(s)
	for _, l := range dateTimeLayouts {
		var t time.Time
		var err error
		if l.offset {
			t, err = time.Parse(l.layout, s)
		} else {
			t, err = time.ParseInLocation(l.layout, s, loc)
		}
		if err == nil {
			return t, parseResult{ok: true, hasTime: l.hasTime, explicitOffset: l.offset}
		}
	}
	return time.Time{}, parseResult{}
}

func parseClockTime(s string) (time.Time, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
