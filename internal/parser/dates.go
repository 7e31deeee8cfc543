package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// IsoDateLayout is the canonical form every date is converted to.
const IsoDateLayout = "2006-01-02"

var monthNumbers = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

var (
	spacedDatePattern   = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3})\s+(\d{4})$`)
	hyphenDatePattern   = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{4})$`)
	dateDialectPatterns = []*regexp.Regexp{spacedDatePattern, hyphenDatePattern}
)

// NormalizeDate converts "04 Aug 2025" or "03-sep-2025" into YYYY-MM-DD.
func NormalizeDate(token string) (string, error) {
	token = strings.TrimSpace(token)
	for _, pattern := range dateDialectPatterns {
		m := pattern.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		month, ok := monthNumbers[strings.ToLower(m[2])]
		if !ok {
			break
		}
		day := m[1]
		if len(day) == 1 {
			day = "0" + day
		}
		date := fmt.Sprintf("%s-%s-%s", m[3], month, day)
		if _, err := time.Parse(IsoDateLayout, date); err != nil {
			break
		}
		return date, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnparseableDate, token)
}

// normalizeField normalizes one date field of a feature. On failure the warning is
// recorded on the entry and, with the legacy fallback enabled, today's date is used.
func normalizeField(entry *FeatureEntry, field, token string, opts Options) string {
	date, err := NormalizeDate(token)
	if err == nil {
		return date
	}
	today, substitute := opts.legacyToday()
	entry.Warnings = append(entry.Warnings, DateWarning{
		Field:       field,
		Raw:         strings.TrimSpace(token),
		Substituted: substitute,
	})
	return today
}

// ParseISODate parses a canonical date at midnight in loc.
func ParseISODate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(IsoDateLayout, date, loc)
}
