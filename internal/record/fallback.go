package record

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Fallback derivation from recognized text, used when the model output
// carried no usable field. Deliberately conservative: a wrong guess here
// silently corrupts a calendar entry, so only unambiguous patterns are
// accepted.

var (
	reISODate = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	// "12 Mar", "12 March 2026", "12/Mar/2026", "12. März" is out of
	// scope; the model normally handles non-English dates.
	reDayMonth = regexp.MustCompile(`(?i)\b(\d{1,2})[ ./-]*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[ ./-]*(\d{4})?\b`)
	reClock    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

var monthNums = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// fallbackStart scans recognized text for a travel date and optional
// time, returning an ISO 8601 string in the builder's input format.
func fallbackStart(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	date, ok := findDate(text)
	if !ok {
		return "", false
	}
	if hh, mm, found := findTime(text); found {
		return fmt.Sprintf("%sT%02d:%02d:00", date, hh, mm), true
	}
	return date, true
}

func findDate(text string) (string, bool) {
	if m := reISODate.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), true
	}
	if m := reDayMonth.FindStringSubmatch(text); m != nil {
		day := atoi(m[1])
		month, ok := monthNums[strings.ToLower(m[2])]
		if !ok || day < 1 || day > 31 {
			return "", false
		}
		year := time.Now().UTC().Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
	}
	return "", false
}

func findTime(text string) (hh, mm int, ok bool) {
	for _, m := range reClock.FindAllStringSubmatch(text, -1) {
		h, min := atoi(m[1]), atoi(m[2])
		if h <= 23 && min <= 59 {
			return h, min, true
		}
	}
	return 0, 0, false
}

// fallbackTitle synthesizes a title when the model omitted one.
func fallbackTitle(ocrText, location string) string {
	if location != "" {
		return "Trip to " + location
	}
	for _, line := range strings.Split(ocrText, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 4 || !hasLetters(line) {
			continue
		}
		// Truncate on a rune boundary; OCR text is often non-ASCII.
		if r := []rune(line); len(r) > 80 {
			line = string(r[:80])
		}
		return line
	}
	return "Travel"
}

func hasLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

