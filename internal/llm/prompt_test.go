package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildUserPrompt(t *testing.T) {
	p := BuildUserPrompt("", 1)
	assert.Contains(t, p, "EXACTLY as printed")
	assert.NotContains(t, p, "pages, supplied in order")
	assert.NotContains(t, p, "Recognized text")

	p = BuildUserPrompt("AB123 CDG-LHR", 3)
	assert.Contains(t, p, "3 pages, supplied in order")
	assert.Contains(t, p, "AB123 CDG-LHR")
}

func TestBuildUserPromptTruncatesLongOCR(t *testing.T) {
	long := strings.Repeat("x", 10000)
	p := BuildUserPrompt(long, 1)
	assert.Contains(t, p, "truncated")
	assert.Less(t, len(p), 7000)
}
