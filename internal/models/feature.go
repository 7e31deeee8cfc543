package models

import (
	"time"

	"github.com/google/uuid"
)

// LicenseFeature is a stored feature grant. Dates are YYYY-MM-DD.
type LicenseFeature struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	LicenseID      uuid.UUID  `json:"license_id" db:"license_id"`
	ProductID      *uuid.UUID `json:"product_id" db:"product_id"`
	FeatureName    string     `json:"feature_name" db:"feature_name"`
	Version        *string    `json:"version" db:"version"`
	StartDate      *string    `json:"start_date" db:"start_date"`
	ExpiryDate     *string    `json:"expiry_date" db:"expiry_date"`
	SerialNumber   *string    `json:"serial_number" db:"serial_number"`
	ExpiryInferred bool       `json:"expiry_inferred" db:"expiry_inferred"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// ExpiringFeature is a feature joined with its license and site for alerting.
type ExpiringFeature struct {
	LicenseFeature
	FileName   string  `json:"file_name"`
	SiteName   string  `json:"site_name"`
	SiteNumber string  `json:"site_number"`
	Department *string `json:"department"`
}
