package models

import (
	"time"

	"github.com/google/uuid"
)

type License struct {
	ID          uuid.UUID `json:"id" db:"id"`
	SiteID      uuid.UUID `json:"site_id" db:"site_id"`
	HostID      *string   `json:"host_id" db:"host_id"`
	PartNumber  *string   `json:"part_number" db:"part_number"`
	PartName    *string   `json:"part_name" db:"part_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	FileName    string    `json:"file_name" db:"file_name"`
	ObjectKey   *string   `json:"-" db:"object_key"`
	ManagerName *string   `json:"manager_name" db:"manager_name"`
	Department  *string   `json:"department" db:"department"`
	ClientName  *string   `json:"client_name" db:"client_name"`
	Memo        *string   `json:"memo" db:"memo"`
	UploadDate  time.Time `json:"upload_date" db:"upload_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// LicenseListItem is a license row joined with its site and feature aggregates.
type LicenseListItem struct {
	License
	SiteName       string  `json:"site_name"`
	SiteNumber     string  `json:"site_number"`
	FeatureCount   int     `json:"feature_count"`
	EarliestExpiry *string `json:"earliest_expiry"`
	LatestExpiry   *string `json:"latest_expiry"`
	ExpiredCount   int     `json:"expired_count"`
	ExpiringCount  int     `json:"expiring_count"`
	ActiveCount    int     `json:"active_count"`
}

// LicenseNotes holds the user editable fields of a license.
type LicenseNotes struct {
	ManagerName *string `json:"manager_name"`
	ClientName  *string `json:"client_name"`
	Memo        *string `json:"memo"`
}

// LicenseFilter narrows a license listing. Zero values mean no filter.
type LicenseFilter struct {
	SiteID     *uuid.UUID
	Department string
	// Status is one of "expired", "expiring", "active" evaluated on the earliest
	// feature expiry relative to Today.
	Status string
	Search string
	Today  time.Time
	Limit  int
	Offset int
}
