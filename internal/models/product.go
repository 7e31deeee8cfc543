package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID             uuid.UUID `json:"id" db:"id"`
	LicenseID      uuid.UUID `json:"license_id" db:"license_id"`
	PartNumber     string    `json:"part_number" db:"part_number"`
	ProductName    string    `json:"product_name" db:"product_name"`
	Quantity       int       `json:"quantity" db:"quantity"`
	EarliestExpiry *string   `json:"earliest_expiry_date" db:"earliest_expiry_date"`
	LatestExpiry   *string   `json:"latest_expiry_date" db:"latest_expiry_date"`
	Status         string    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
