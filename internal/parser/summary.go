package parser

import "time"

// LicenseSummary aggregates the features of one parsed license.
type LicenseSummary struct {
	Site           SiteInfo             `json:"site"`
	Part           PartInfo             `json:"part"`
	TotalFeatures  int                  `json:"total_features"`
	ByStatus       map[ExpiryStatus]int `json:"by_status"`
	Unclassified   int                  `json:"unclassified"`
	EarliestExpiry *string              `json:"earliest_expiry"`
	LatestExpiry   *string              `json:"latest_expiry"`
}

// Active is the number of features more than WarningDays from expiry.
func (s LicenseSummary) Active() int { return s.ByStatus[StatusActive] }

// Expiring counts features that expire today or within WarningDays.
func (s LicenseSummary) Expiring() int {
	return s.ByStatus[StatusExpiresToday] + s.ByStatus[StatusExpiresSoon] + s.ByStatus[StatusExpiresWarning]
}

// Expired counts features past their expiry date.
func (s LicenseSummary) Expired() int { return s.ByStatus[StatusExpired] }

// Summarize folds the features of a parsed license into counts and expiry extremes.
// Canonical dates order lexically, so extremes are tracked by string comparison.
func Summarize(parsed *ParsedLicense, now time.Time) LicenseSummary {
	summary := SummarizeFeatures(parsed.Features(), now)
	if parsed != nil {
		summary.Site = parsed.Site
		summary.Part = parsed.Part()
	}
	return summary
}

// SummarizeFeatures folds a feature list. Features whose expiry could not be parsed
// count toward the total and Unclassified only.
func SummarizeFeatures(features []FeatureEntry, now time.Time) LicenseSummary {
	summary := LicenseSummary{ByStatus: make(map[ExpiryStatus]int, len(AllStatuses))}
	for _, status := range AllStatuses {
		summary.ByStatus[status] = 0
	}

	for _, feature := range features {
		summary.TotalFeatures++
		days, err := DaysLeft(feature.ExpiryDate, now)
		if err != nil {
			summary.Unclassified++
			continue
		}
		summary.ByStatus[ClassifyDays(days)]++

		expiry := feature.ExpiryDate
		if summary.EarliestExpiry == nil || expiry < *summary.EarliestExpiry {
			summary.EarliestExpiry = &expiry
		}
		if summary.LatestExpiry == nil || expiry > *summary.LatestExpiry {
			summary.LatestExpiry = &expiry
		}
	}
	return summary
}
