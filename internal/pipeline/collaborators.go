package pipeline

import (
	"context"

	"github.com/tripfolio/trip-extractor/internal/record"
)

// CalendarSink is the downstream collaborator boundary: whoever creates
// the calendar event owns its own auth/session lifecycle. The pipeline
// depends on nothing it does.
type CalendarSink interface {
	CreateEvent(ctx context.Context, rec record.TravelRecord) error
}
