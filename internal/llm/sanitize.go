package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// NormalizeAndSanitizeJSON
// - Renames known synonyms (start -> start_date, end_time -> end_date, ...)
// - Drops null/empty optionals
// - Normalizes "YYYY-MM-DD HH:MM" into the T-separated form
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to the schema field names
	renamed("start", "start_date")
	renamed("startDate", "start_date")
	renamed("start_time", "start_date")
	renamed("departure", "start_date")
	renamed("end", "end_date")
	renamed("endDate", "end_date")
	renamed("end_time", "end_date")
	renamed("arrival", "end_date")
	renamed("summary", "title")
	renamed("event_title", "title")
	renamed("tz", "timezone")
	renamed("time_zone", "timezone")

	// 2) drop null / "" and normalize datetime separators
	dateFields := []string{"start_date", "end_date"}
	for _, k := range dateFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
				continue
			}
			// models occasionally separate date and time with a space
			if len(s) > 10 && s[10] == ' ' {
				s = s[:10] + "T" + s[11:]
			}
			m[k] = s
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	// 3) trim string fields; drop when empty
	trimKeys := []string{"title", "location", "description", "timezone"}
	for _, k := range trimKeys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	// 4) remove unknown keys (everything outside the schema set)
	allowed := map[string]struct{}{
		"title": {}, "start_date": {}, "end_date": {}, "location": {},
		"description": {}, "timezone": {}, "confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Debug("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
