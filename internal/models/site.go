package models

import (
	"time"

	"github.com/google/uuid"
)

type Site struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SiteName     string    `json:"site_name" db:"site_name"`
	SiteNumber   string    `json:"site_number" db:"site_number"`
	FullSiteName *string   `json:"full_site_name" db:"full_site_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
