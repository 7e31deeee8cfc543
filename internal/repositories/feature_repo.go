package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"licensewatch/internal/models"
	"licensewatch/pkg/database"
)

type FeatureRepository interface {
	Create(ctx context.Context, feature *models.LicenseFeature) error
	ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*models.LicenseFeature, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]*models.ExpiringFeature, error)
	LinkToProduct(ctx context.Context, featureID, productID, licenseID, originalLicenseID uuid.UUID) (bool, error)
	DeleteByLicense(ctx context.Context, licenseID uuid.UUID) error
	LinkStats(ctx context.Context) (linked, unlinked int, err error)
	WithTx(tx pgx.Tx) FeatureRepository
}

type featureRepo struct {
	db database.Querier
}

func NewFeatureRepository(db database.Querier) FeatureRepository {
	return &featureRepo{db: db}
}

func (r *featureRepo) WithTx(tx pgx.Tx) FeatureRepository {
	return &featureRepo{db: tx}
}

var featureColumns = `f.id, f.license_id, f.product_id, f.feature_name, f.version, ` +
	dateColumn("f.start_date") + `, ` + dateColumn("f.expiry_date") + `, f.serial_number, f.expiry_inferred, f.created_at`

func scanFeature(row pgx.Row, f *models.LicenseFeature, extra ...any) error {
	dest := []any{&f.ID, &f.LicenseID, &f.ProductID, &f.FeatureName, &f.Version,
		&f.StartDate, &f.ExpiryDate, &f.SerialNumber, &f.ExpiryInferred, &f.CreatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *featureRepo) Create(ctx context.Context, feature *models.LicenseFeature) error {
	query := `
		INSERT INTO license_features (id, license_id, product_id, feature_name, version, start_date, expiry_date,
			serial_number, expiry_inferred, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	if feature.ID == uuid.Nil {
		feature.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, query, feature.ID, feature.LicenseID, feature.ProductID, feature.FeatureName,
		feature.Version, feature.StartDate, feature.ExpiryDate, feature.SerialNumber, feature.ExpiryInferred)
	return err
}

func (r *featureRepo) ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*models.LicenseFeature, error) {
	query := `SELECT ` + featureColumns + ` FROM license_features f WHERE f.license_id = $1 ORDER BY f.expiry_date NULLS LAST, f.feature_name`
	rows, err := r.db.Query(ctx, query, licenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	features := []*models.LicenseFeature{}
	for rows.Next() {
		feature := &models.LicenseFeature{}
		if err := scanFeature(rows, feature); err != nil {
			return nil, err
		}
		features = append(features, feature)
	}
	return features, rows.Err()
}

// ListExpiring returns features whose expiry falls in [from, to], soonest first.
func (r *featureRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]*models.ExpiringFeature, error) {
	query := `SELECT ` + featureColumns + `, l.file_name, s.site_name, s.site_number, l.department
		FROM license_features f
		JOIN licenses l ON l.id = f.license_id
		JOIN sites s ON s.id = l.site_id
		WHERE f.expiry_date >= $1::date AND f.expiry_date <= $2::date
		ORDER BY f.expiry_date, s.site_name`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	features := []*models.ExpiringFeature{}
	for rows.Next() {
		feature := &models.ExpiringFeature{}
		if err := scanFeature(rows, &feature.LicenseFeature, &feature.FileName, &feature.SiteName, &feature.SiteNumber, &feature.Department); err != nil {
			return nil, err
		}
		features = append(features, feature)
	}
	return features, rows.Err()
}

// LinkToProduct attaches a feature to a product and moves it to licenseID. The
// product_id IS NULL guard makes a second link of the same feature a no-op; the
// returned bool reports whether the row changed.
func (r *featureRepo) LinkToProduct(ctx context.Context, featureID, productID, licenseID, originalLicenseID uuid.UUID) (bool, error) {
	query := `
		UPDATE license_features
		SET product_id = $1, license_id = $2
		WHERE id = $3 AND license_id = $4 AND product_id IS NULL
	`
	tag, err := r.db.Exec(ctx, query, productID, licenseID, featureID, originalLicenseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *featureRepo) DeleteByLicense(ctx context.Context, licenseID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM license_features WHERE license_id = $1`, licenseID)
	return err
}

func (r *featureRepo) LinkStats(ctx context.Context) (linked, unlinked int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE product_id IS NOT NULL),
			COUNT(*) FILTER (WHERE product_id IS NULL)
		FROM license_features
	`
	err = r.db.QueryRow(ctx, query).Scan(&linked, &unlinked)
	return linked, unlinked, err
}
