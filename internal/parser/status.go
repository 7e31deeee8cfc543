package parser

import "time"

// ExpiryStatus buckets a feature by days until expiry.
type ExpiryStatus string

const (
	StatusExpired        ExpiryStatus = "EXPIRED"
	StatusExpiresToday   ExpiryStatus = "EXPIRES_TODAY"
	StatusExpiresSoon    ExpiryStatus = "EXPIRES_SOON"
	StatusExpiresWarning ExpiryStatus = "EXPIRES_WARNING"
	StatusActive         ExpiryStatus = "ACTIVE"
)

// Window boundaries in days, inclusive.
const (
	SoonDays    = 7
	WarningDays = 30
)

// AllStatuses lists the buckets from most to least severe.
var AllStatuses = []ExpiryStatus{
	StatusExpired,
	StatusExpiresToday,
	StatusExpiresSoon,
	StatusExpiresWarning,
	StatusActive,
}

// Severity orders statuses; higher is more urgent.
func (s ExpiryStatus) Severity() int {
	switch s {
	case StatusExpired:
		return 4
	case StatusExpiresToday:
		return 3
	case StatusExpiresSoon:
		return 2
	case StatusExpiresWarning:
		return 1
	default:
		return 0
	}
}

// Color is the display hint the dashboard uses for a status.
func (s ExpiryStatus) Color() string {
	switch s {
	case StatusExpired:
		return "red"
	case StatusExpiresToday, StatusExpiresSoon:
		return "orange"
	case StatusExpiresWarning:
		return "yellow"
	default:
		return "green"
	}
}

// StatusResult is an expiry status together with the day count it was derived from.
type StatusResult struct {
	Status   ExpiryStatus `json:"status"`
	DaysLeft int          `json:"days_left"`
	Color    string       `json:"color"`
}

// ClassifyDays maps a signed day count to its status.
func ClassifyDays(daysLeft int) ExpiryStatus {
	switch {
	case daysLeft < 0:
		return StatusExpired
	case daysLeft == 0:
		return StatusExpiresToday
	case daysLeft <= SoonDays:
		return StatusExpiresSoon
	case daysLeft <= WarningDays:
		return StatusExpiresWarning
	default:
		return StatusActive
	}
}

// DaysLeft is the whole number of calendar days from now until midnight of the expiry
// date in now's location, truncated toward zero. Days are counted on the calendar, so a
// DST transition in between does not shorten the window.
func DaysLeft(expiryDate string, now time.Time) (int, error) {
	expiry, err := ParseISODate(expiryDate, time.UTC)
	if err != nil {
		return 0, err
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(expiry.Sub(today).Hours() / 24)

	if days > 0 && now.After(time.Date(y, m, d, 0, 0, 0, 0, now.Location())) {
		days--
	}
	return days, nil
}

// ClassifyStatus classifies an expiry date relative to now. It never fails: an expiry
// that is not a canonical date is reported as expired with zero days left.
func ClassifyStatus(expiryDate string, now time.Time) StatusResult {
	days, err := DaysLeft(expiryDate, now)
	if err != nil {
		return StatusResult{Status: StatusExpired, Color: StatusExpired.Color()}
	}
	status := ClassifyDays(days)
	return StatusResult{Status: status, DaysLeft: days, Color: status.Color()}
}

// DocumentStatus is the three-way status stored on products.
type DocumentStatus string

const (
	DocumentExpired DocumentStatus = "expired"
	DocumentWarning DocumentStatus = "warning"
	DocumentActive  DocumentStatus = "active"
)

// CollapseStatus folds the five buckets into the product-level status.
func CollapseStatus(s ExpiryStatus) DocumentStatus {
	switch s {
	case StatusExpired:
		return DocumentExpired
	case StatusActive:
		return DocumentActive
	default:
		return DocumentWarning
	}
}
