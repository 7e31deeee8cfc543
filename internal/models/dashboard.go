package models

// DashboardSummary is the aggregate shown on the dashboard.
type DashboardSummary struct {
	TotalLicenses int               `json:"total_licenses"`
	TotalFeatures int               `json:"total_features"`
	ActiveSites   int               `json:"active_sites"`
	Departments   []DepartmentCount `json:"departments"`
	Expiring30    int               `json:"expiring_30_days"`
	Expiring7     int               `json:"expiring_7_days"`
	Expired       int               `json:"expired"`
	Active        int               `json:"active"`
	RecentUploads []LicenseListItem `json:"recent_uploads"`
	ExpiryRange   ExpiryRange       `json:"expiry_range"`
	ByStatus      map[string]int    `json:"by_status"`
	GeneratedAt   string            `json:"generated_at"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type ExpiryRange struct {
	Earliest *string `json:"earliest"`
	Latest   *string `json:"latest"`
}
