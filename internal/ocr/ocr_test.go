package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfolio/trip-extractor/internal/document"
)

type fakeRunner struct {
	calls  [][]string
	stdout []byte
	stderr []byte
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.stdout, f.stderr, f.err
}

// testExtractor returns an Extractor with binary discovery forced so the
// gate can be exercised on machines without tesseract installed.
func testExtractor(t *testing.T, cfg Config, available bool, runner *fakeRunner) *Extractor {
	t.Helper()
	e := NewExtractor(cfg, nil)
	e.lookOnce.Do(func() { e.available = available })
	if runner != nil {
		e.runner = runner
	}
	return e
}

func grayPage(w, h, index int) document.Page {
	return document.NewPage(image.NewGray(image.Rect(0, 0, w, h)), index)
}

func TestRecognizeSkipsSmallPages(t *testing.T) {
	runner := &fakeRunner{}
	e := testExtractor(t, Config{MinArea: 150 * 150}, true, runner)

	got := e.Recognize(context.Background(), grayPage(100, 100, 1))

	assert.False(t, got.Attempted)
	assert.Contains(t, got.Note, "too small")
	assert.Contains(t, got.Note, "page 2")
	assert.Empty(t, runner.calls, "recognizer binary must not run for gated pages")
}

func TestRecognizeSkipsWhenUnavailable(t *testing.T) {
	runner := &fakeRunner{}
	e := testExtractor(t, Config{}, false, runner)

	got := e.Recognize(context.Background(), grayPage(500, 500, 0))

	assert.False(t, got.Attempted)
	assert.Contains(t, got.Note, "not installed")
	assert.Empty(t, runner.calls)
}

func TestRecognizeRunsTesseract(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("BOARDING PASS\r\nAB 123   GATE 12\n")}
	e := testExtractor(t, Config{MinArea: 100, TesseractLang: "eng"}, true, runner)

	got := e.Recognize(context.Background(), grayPage(200, 200, 0))

	require.True(t, got.Attempted)
	assert.Equal(t, "BOARDING PASS\nAB 123 GATE 12", got.Text)
	assert.Empty(t, got.Note)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "tesseract", call[0])
	assert.Equal(t, "stdout", call[2])
	assert.Equal(t, []string{"-l", "eng"}, call[3:5])
}

func TestRecognizePassesTessdataDir(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("ok")}
	e := testExtractor(t, Config{MinArea: 1, TessdataDir: "/opt/tessdata"}, true, runner)

	got := e.Recognize(context.Background(), grayPage(50, 50, 0))

	require.True(t, got.Attempted)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "--tessdata-dir")
	assert.Contains(t, runner.calls[0], "/opt/tessdata")
}

func TestRecognizeDegradesOnRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: []byte("could not load language")}
	e := testExtractor(t, Config{MinArea: 1}, true, runner)

	got := e.Recognize(context.Background(), grayPage(300, 300, 2))

	assert.False(t, got.Attempted)
	assert.Empty(t, got.Text)
	assert.Contains(t, got.Note, "failed on page 3")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf and tabs", "a\r\nb\tc", "a\nb c"},
		{"rule noise dropped", "Flight AB123\n--------\nGate 12", "Flight AB123\n\nGate 12"},
		{"blank runs collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"times preserved", "Departure 07:00\nSeat 10A", "Departure 07:00\nSeat 10A"},
		{"trailing space trimmed", "  a   b  \n", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
