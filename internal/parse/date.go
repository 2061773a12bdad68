package parse

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/errs"
)

// DateNormalizer turns the loosely formatted timestamps found in chat
// exports into instants. Strings without an offset are read in Location
// (time.Local when nil).
type DateNormalizer struct {
	Location *time.Location
}

// directLayouts are tried in order before the day-month-year pattern.
var directLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// dmyRe matches D.M.YYYY, D/M/YYYY or D-M-YYYY with an optional H:MM[:SS].
// Only the start is anchored: exports append things like "UTC+03:00".
var dmyRe = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)

func (d DateNormalizer) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

// Normalize parses s, first with the direct layouts and then with the
// day-month-year pattern. Two-digit years are kept as written.
func (d DateNormalizer) Normalize(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", errs.ErrDateParse)
	}
	loc := d.location()

	for _, layout := range directLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc).Truncate(time.Second), nil
		}
	}

	if m := dmyRe.FindStringSubmatch(s); m != nil {
		iso := fmt.Sprintf("%s-%s-%sT%s:%s:%s",
			padLeft(m[3], 4), padLeft(m[2], 2), padLeft(m[1], 2),
			padLeft(orZero(m[4]), 2), padLeft(orZero(m[5]), 2), padLeft(orZero(m[6]), 2))
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", iso, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", errs.ErrDateParse, s)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
