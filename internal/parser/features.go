package parser

import "regexp"

var (
	featureLinePattern = regexp.MustCompile(
		`#\s+(\w+)\s+([\d.]+)\s+(\d{2}\s+\w{3}\s+\d{4})\s+(\d{2}\s+\w{3}\s+\d{4})\s+(\d+)`)
	incrementLinePattern = regexp.MustCompile(
		`INCREMENT\s+(\w+)\s+\w+\s+([\d.]+)\s+(\d{2}-\w{3}-\d{4})`)
)

// ParseFeatures enumerates every feature grant in a body. When no "# name version
// start expiry serial" line exists, INCREMENT lines are used instead; those carry a
// single date, so the entry's expiry is inferred from it.
func ParseFeatures(body string, opts Options) []FeatureEntry {
	var features []FeatureEntry

	for _, m := range featureLinePattern.FindAllStringSubmatch(body, -1) {
		entry := FeatureEntry{
			FeatureName:  m[1],
			Version:      m[2],
			SerialNumber: m[5],
		}
		entry.StartDate = normalizeField(&entry, "start_date", m[3], opts)
		entry.ExpiryDate = normalizeField(&entry, "expiry_date", m[4], opts)
		features = append(features, entry)
	}
	if len(features) > 0 {
		return features
	}

	for _, m := range incrementLinePattern.FindAllStringSubmatch(body, -1) {
		entry := FeatureEntry{
			FeatureName:    m[1],
			Version:        m[2],
			ExpiryInferred: true,
		}
		entry.StartDate = normalizeField(&entry, "start_date", m[3], opts)
		entry.ExpiryDate = entry.StartDate
		features = append(features, entry)
	}
	return features
}
