package llm

// BuildTravelJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is sent to the model as an output constraint and used
// locally to validate the response after sanitization.
func BuildTravelJSONSchema() map[string]any {
	props := map[string]any{
		"title":       map[string]any{"type": "string", "minLength": 1},
		"start_date":  datetimeProp(),
		"end_date":    datetimeProp(),
		"location":    map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"timezone":    map[string]any{"type": "string", "minLength": 1},
		"confidence":  map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}

	// Only title and start_date are hard requirements at the schema
	// level; the record builder can still recover either from OCR text
	// before giving up.
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"title", "start_date"},
	}
}

func datetimeProp() map[string]any {
	return map[string]any{
		"type": "string",
		// date, or date-time with optional seconds; zone suffix allowed
		// when the document printed one.
		"pattern": `^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2})?([+-]\d{2}:?\d{2}|Z)?)?$`,
	}
}
