package gemini

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ModelSelection is the process-wide single-slot cache of the last model
// identifier that produced a successful call. Reads and writes are
// mutually exclusive; discovery runs through singleflight so concurrent
// discoverers collapse into one probe and the losers adopt the winner's
// result instead of probing again.
type ModelSelection struct {
	mu    sync.Mutex
	ident string

	group singleflight.Group
}

func NewModelSelection() *ModelSelection {
	return &ModelSelection{}
}

// Current returns the cached identifier, if any.
func (s *ModelSelection) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ident, s.ident != ""
}

// Invalidate clears the cache, but only if it still holds the identifier
// that just failed. A concurrent rediscovery that already cached a fresh
// identifier is left alone.
func (s *ModelSelection) Invalidate(failed string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ident == failed {
		s.ident = ""
	}
}

// Discover returns the cached identifier or runs probe to find one,
// committing the result on success. Concurrent callers share a single
// probe execution. A probe that fails (including cancellation mid-flight)
// commits nothing; the cache stays empty for the next caller to retry.
func (s *ModelSelection) Discover(ctx context.Context, probe func(context.Context) (string, error)) (string, error) {
	if ident, ok := s.Current(); ok {
		return ident, nil
	}

	do := func() (any, error) {
		// Re-check under the flight: a winner may have committed between
		// our Current() miss and joining the group.
		if ident, ok := s.Current(); ok {
			return ident, nil
		}
		ident, err := probe(ctx)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.ident = ident
		s.mu.Unlock()
		return ident, nil
	}

	v, err, _ := s.group.Do("discover", do)
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() == nil {
		// The shared probe ran on the executing caller's context and died
		// with that caller's cancellation, not ours. Probe again on our
		// own context.
		v, err, _ = s.group.Do("discover", do)
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
