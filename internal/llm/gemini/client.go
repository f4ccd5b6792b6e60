// Package gemini implements llm.TravelExtractor against the Gemini
// generateContent REST API, with model-identifier discovery, fallback and
// process-wide caching.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripfolio/trip-extractor/internal/common"
	"github.com/tripfolio/trip-extractor/internal/llm"
)

// ExtractRaw implements llm.TravelExtractor. It returns the model's raw
// text output; interpreting it is the record builder's responsibility.
func (c *Client) ExtractRaw(ctx context.Context, req llm.ExtractRequest) (string, string, error) {
	rid := req.RequestID
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"pages", len(req.Pages),
		"ocr_text_len", len(req.OCRText),
	)

	ident, cached := c.selection.Current()
	if !cached {
		var err error
		ident, err = c.discover(ctx, rid, req)
		if err != nil {
			return "", "", err
		}
		// Discovery probes with the real request, so a fresh discovery
		// already produced the answer.
		if raw, ok := c.takeProbeResult(rid); ok {
			c.logger.Info("llm.extract.ok",
				"req_id", rid, "model", ident, "discovered", true,
				"elapsed_ms", time.Since(start).Milliseconds())
			return raw, ident, nil
		}
	}

	raw, err := c.callWithRetry(ctx, rid, ident, req)
	if err == nil {
		c.logger.Info("llm.extract.ok",
			"req_id", rid, "model", ident,
			"elapsed_ms", time.Since(start).Milliseconds())
		return raw, ident, nil
	}

	var ce *callError
	if errors.As(err, &ce) && ce.identUnavailable {
		// Cached -> Invalidated -> rediscover once.
		c.logger.Warn("llm.extract.model_invalidated",
			"req_id", rid, "model", ident, "status", ce.status)
		c.selection.Invalidate(ident)

		newIdent, derr := c.discover(ctx, rid, req)
		if derr != nil {
			return "", "", derr
		}
		if raw, ok := c.takeProbeResult(rid); ok {
			return raw, newIdent, nil
		}
		raw, err = c.callWithRetry(ctx, rid, newIdent, req)
		if err == nil {
			return raw, newIdent, nil
		}
		ident = newIdent
	}

	c.logger.Error("llm.extract.failed",
		"req_id", rid, "model", ident, "error", err,
		"elapsed_ms", time.Since(start).Milliseconds())
	return "", "", classify(err)
}

// discover walks the candidate list with the real request until one
// identifier succeeds, sharing the probe across concurrent callers. The
// winning response is stashed so the probing invocation does not pay for
// a second model call.
func (c *Client) discover(ctx context.Context, rid string, req llm.ExtractRequest) (string, error) {
	return c.selection.Discover(ctx, func(ctx context.Context) (string, error) {
		var lastErr error
		for _, cand := range c.cfg.Candidates {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			raw, err := c.call(ctx, rid, cand, req)
			if err == nil {
				c.logger.Info("llm.discover.ok", "req_id", rid, "model", cand)
				c.stashProbeResult(rid, raw)
				return cand, nil
			}
			lastErr = err
			c.logger.Warn("llm.discover.candidate_failed",
				"req_id", rid, "model", cand, "error", err)
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("no candidate identifiers configured")
		}
		return "", fmt.Errorf("%w: %v", common.ErrModelUnavailable, lastErr)
	})
}

// callWithRetry retries the same identifier on transient errors with
// doubling backoff. Identifier-unavailable and other permanent errors
// surface immediately.
func (c *Client) callWithRetry(ctx context.Context, rid, ident string, req llm.ExtractRequest) (string, error) {
	var lastErr error
	backoff := c.cfg.RetryBase
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		raw, err := c.call(ctx, rid, ident, req)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		var ce *callError
		if errors.As(err, &ce) && !ce.transient {
			return "", err
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}
		c.logger.Warn("llm.extract.retry",
			"req_id", rid, "model", ident, "attempt", attempt, "backoff_ms", backoff.Milliseconds(), "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", lastErr
}

// call performs one generateContent request against one identifier.
func (c *Client) call(ctx context.Context, rid, ident string, req llm.ExtractRequest) (string, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + url.PathEscape(ident) + ":generateContent"

	parts := make([]map[string]any, 0, len(req.Pages)+1)
	for _, p := range req.Pages {
		parts = append(parts, map[string]any{
			"inline_data": map[string]any{
				"mime_type": p.MIMEType,
				"data":      base64.StdEncoding.EncodeToString(p.Data),
			},
		})
	}
	parts = append(parts, map[string]any{
		"text": llm.BuildUserPrompt(req.OCRText, len(req.Pages)),
	})

	body := map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]any{{"text": llm.SystemPrompt}},
		},
		"contents": []map[string]any{
			{"role": "user", "parts": parts},
		},
		"generationConfig": map[string]any{
			"temperature":        0.0,
			"response_mime_type": "application/json",
		},
	}

	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return "", newCallError(status, raw, ident, err)
	}

	var gr struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if derr := json.Unmarshal(raw, &gr); derr != nil {
		// A 200 with an undecodable envelope is a service hiccup, not a
		// bad identifier.
		return "", &callError{status: status, transient: true, err: fmt.Errorf("decode response: %w", derr)}
	}

	var b strings.Builder
	for _, cand := range gr.Candidates {
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
	}
	// Empty text (e.g. a safety-blocked response) is passed through; the
	// record builder decides whether anything usable remains.
	return b.String(), nil
}

// callError classifies one failed model call.
type callError struct {
	status           int
	transient        bool
	identUnavailable bool
	err              error
}

func (e *callError) Error() string {
	return fmt.Sprintf("model call failed (status=%d): %v", e.status, e.err)
}

func (e *callError) Unwrap() error { return e.err }

func newCallError(status int, body []byte, ident string, err error) *callError {
	ce := &callError{status: status, err: err}
	switch {
	case status == 404:
		ce.identUnavailable = true
	case status == 400 && bodyNamesUnknownModel(body, ident):
		ce.identUnavailable = true
	case status == 0: // transport error, timeout, cancellation
		ce.transient = true
	case status == 408 || status == 429 || status >= 500:
		ce.transient = true
	}
	return ce
}

// bodyNamesUnknownModel detects 400 responses that are really "no such
// model" answers, which Gemini emits for retired identifier aliases.
func bodyNamesUnknownModel(body []byte, ident string) bool {
	s := strings.ToLower(string(body))
	if !strings.Contains(s, strings.ToLower(ident)) {
		return false
	}
	return strings.Contains(s, "not found") ||
		strings.Contains(s, "is not supported") ||
		strings.Contains(s, "unknown model")
}

// classify maps a terminal call error onto the pipeline taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrModelUnavailable) {
		return err
	}
	var ce *callError
	if errors.As(err, &ce) && ce.identUnavailable {
		return fmt.Errorf("%w: %v", common.ErrModelUnavailable, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrTransientFailure, err)
}
