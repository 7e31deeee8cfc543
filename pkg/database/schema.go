package database

import (
	"context"
	"fmt"
)

// schema is idempotent; products and license_features.product_id were added after
// the first release, so they are created with IF NOT EXISTS as well.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sites (
		id UUID PRIMARY KEY,
		site_name TEXT NOT NULL,
		site_number TEXT NOT NULL UNIQUE,
		full_site_name TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS licenses (
		id UUID PRIMARY KEY,
		site_id UUID NOT NULL REFERENCES sites(id),
		host_id TEXT,
		part_number TEXT,
		part_name TEXT,
		quantity INTEGER NOT NULL DEFAULT 1,
		file_name TEXT NOT NULL,
		object_key TEXT,
		manager_name TEXT,
		department TEXT,
		client_name TEXT,
		memo TEXT,
		upload_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		license_id UUID NOT NULL REFERENCES licenses(id),
		part_number TEXT NOT NULL,
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		earliest_expiry_date DATE,
		latest_expiry_date DATE,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS license_features (
		id UUID PRIMARY KEY,
		license_id UUID NOT NULL REFERENCES licenses(id),
		product_id UUID REFERENCES products(id) ON DELETE SET NULL,
		feature_name TEXT NOT NULL,
		version TEXT,
		start_date DATE,
		expiry_date DATE,
		serial_number TEXT,
		expiry_inferred BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE license_features ADD COLUMN IF NOT EXISTS product_id UUID REFERENCES products(id) ON DELETE SET NULL`,
	`CREATE INDEX IF NOT EXISTS idx_licenses_site ON licenses(site_id)`,
	`CREATE INDEX IF NOT EXISTS idx_features_license_expiry ON license_features(license_id, expiry_date)`,
	`CREATE INDEX IF NOT EXISTS idx_features_product_expiry ON license_features(product_id, expiry_date)`,
	`CREATE INDEX IF NOT EXISTS idx_products_license_expiry ON products(license_id, earliest_expiry_date)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db Querier) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
