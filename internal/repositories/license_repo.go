package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"licensewatch/internal/models"
	"licensewatch/internal/parser"
	"licensewatch/pkg/database"
)

type LicenseRepository interface {
	Create(ctx context.Context, license *models.License) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	GetItem(ctx context.Context, id uuid.UUID, today time.Time) (*models.LicenseListItem, error)
	List(ctx context.Context, filter models.LicenseFilter) ([]models.LicenseListItem, int, error)
	Recent(ctx context.Context, limit int, today time.Time) ([]models.LicenseListItem, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes models.LicenseNotes) error
	UpdatePart(ctx context.Context, id uuid.UUID, partNumber, partName string) error
	Delete(ctx context.Context, id uuid.UUID) error
	LockForUpdate(ctx context.Context, id uuid.UUID) (*models.License, error)
	ListWithoutProducts(ctx context.Context) ([]*models.License, error)
	CountByObjectKey(ctx context.Context, objectKey string) (int, error)
	WithTx(tx pgx.Tx) LicenseRepository
}

type licenseRepo struct {
	db database.Querier
}

func NewLicenseRepository(db database.Querier) LicenseRepository {
	return &licenseRepo{db: db}
}

func (r *licenseRepo) WithTx(tx pgx.Tx) LicenseRepository {
	return &licenseRepo{db: tx}
}

const licenseColumns = `id, site_id, host_id, part_number, part_name, quantity, file_name, object_key,
		manager_name, department, client_name, memo, upload_date, created_at, updated_at`

func scanLicense(row pgx.Row, l *models.License, extra ...any) error {
	dest := []any{&l.ID, &l.SiteID, &l.HostID, &l.PartNumber, &l.PartName, &l.Quantity, &l.FileName, &l.ObjectKey,
		&l.ManagerName, &l.Department, &l.ClientName, &l.Memo, &l.UploadDate, &l.CreatedAt, &l.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *licenseRepo) Create(ctx context.Context, license *models.License) error {
	query := `
		INSERT INTO licenses (id, site_id, host_id, part_number, part_name, quantity, file_name, object_key,
			manager_name, department, client_name, memo, upload_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	if license.ID == uuid.Nil {
		license.ID = uuid.New()
	}
	if license.Quantity < 1 {
		license.Quantity = 1
	}
	if license.UploadDate.IsZero() {
		license.UploadDate = time.Now()
	}
	_, err := r.db.Exec(ctx, query, license.ID, license.SiteID, license.HostID, license.PartNumber, license.PartName,
		license.Quantity, license.FileName, license.ObjectKey, license.ManagerName, license.Department,
		license.ClientName, license.Memo, license.UploadDate)
	return err
}

func (r *licenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	license := &models.License{}
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE id = $1`
	if err := scanLicense(r.db.QueryRow(ctx, query, id), license); err != nil {
		return nil, notFound(err)
	}
	return license, nil
}

// LockForUpdate reads a license and holds its row lock until the transaction ends.
// It must be called on a repository bound to a transaction.
func (r *licenseRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*models.License, error) {
	license := &models.License{}
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE id = $1 FOR UPDATE`
	if err := scanLicense(r.db.QueryRow(ctx, query, id), license); err != nil {
		return nil, notFound(err)
	}
	return license, nil
}

// itemSelect yields one row per license with site and feature aggregates. $1 is
// today's date; the warning window is parser.WarningDays.
var itemSelect = fmt.Sprintf(`
		SELECT l.id, l.site_id, l.host_id, l.part_number, l.part_name, l.quantity, l.file_name, l.object_key,
			l.manager_name, l.department, l.client_name, l.memo, l.upload_date, l.created_at, l.updated_at,
			s.site_name, s.site_number,
			COUNT(f.id),
			%s,
			%s,
			COUNT(f.id) FILTER (WHERE f.expiry_date < $1::date),
			COUNT(f.id) FILTER (WHERE f.expiry_date >= $1::date AND f.expiry_date <= $1::date + %d),
			COUNT(f.id) FILTER (WHERE f.expiry_date > $1::date + %d)
		FROM licenses l
		JOIN sites s ON s.id = l.site_id
		LEFT JOIN license_features f ON f.license_id = l.id
	`, dateColumn("MIN(f.expiry_date)"), dateColumn("MAX(f.expiry_date)"), parser.WarningDays, parser.WarningDays)

const itemGroupBy = ` GROUP BY l.id, s.site_name, s.site_number`

func scanItem(row pgx.Row) (models.LicenseListItem, error) {
	var item models.LicenseListItem
	err := scanLicense(row, &item.License, &item.SiteName, &item.SiteNumber, &item.FeatureCount,
		&item.EarliestExpiry, &item.LatestExpiry, &item.ExpiredCount, &item.ExpiringCount, &item.ActiveCount)
	return item, err
}

func (r *licenseRepo) GetItem(ctx context.Context, id uuid.UUID, today time.Time) (*models.LicenseListItem, error) {
	query := itemSelect + ` WHERE l.id = $2` + itemGroupBy
	item, err := scanItem(r.db.QueryRow(ctx, query, today, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *licenseRepo) List(ctx context.Context, filter models.LicenseFilter) ([]models.LicenseListItem, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{filter.Today}
	conditionCount := 1

	if filter.SiteID != nil {
		conditionCount++
		where += fmt.Sprintf(` AND l.site_id = $%d`, conditionCount)
		args = append(args, *filter.SiteID)
	}
	if filter.Department != "" {
		conditionCount++
		where += fmt.Sprintf(` AND l.department = $%d`, conditionCount)
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		conditionCount++
		where += fmt.Sprintf(` AND (
			s.site_name ILIKE $%d OR
			s.site_number ILIKE $%d OR
			COALESCE(l.part_name, '') ILIKE $%d OR
			COALESCE(l.client_name, '') ILIKE $%d OR
			l.file_name ILIKE $%d
		)`, conditionCount, conditionCount, conditionCount, conditionCount, conditionCount)
		args = append(args, "%"+filter.Search+"%")
	}

	having := ""
	switch filter.Status {
	case "expired":
		having = ` HAVING MIN(f.expiry_date) < $1::date`
	case "expiring":
		having = fmt.Sprintf(` HAVING MIN(f.expiry_date) >= $1::date AND MIN(f.expiry_date) <= $1::date + %d`, parser.WarningDays)
	case "active":
		having = fmt.Sprintf(` HAVING MIN(f.expiry_date) > $1::date + %d`, parser.WarningDays)
	}

	base := itemSelect + where + itemGroupBy + having

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM (`+base+`) counted`, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := base + ` ORDER BY l.upload_date DESC`
	conditionCount++
	query += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		query += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []models.LicenseListItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *licenseRepo) Recent(ctx context.Context, limit int, today time.Time) ([]models.LicenseListItem, error) {
	query := itemSelect + itemGroupBy + ` ORDER BY l.upload_date DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, today, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.LicenseListItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *licenseRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes models.LicenseNotes) error {
	query := `
		UPDATE licenses
		SET manager_name = $1, client_name = $2, memo = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, notes.ManagerName, notes.ClientName, notes.Memo, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *licenseRepo) UpdatePart(ctx context.Context, id uuid.UUID, partNumber, partName string) error {
	query := `UPDATE licenses SET part_number = $1, part_name = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.Exec(ctx, query, partNumber, partName, id)
	return err
}

func (r *licenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM licenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWithoutProducts returns the licenses that have not been reconciled yet.
func (r *licenseRepo) ListWithoutProducts(ctx context.Context) ([]*models.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses l
		WHERE NOT EXISTS (SELECT 1 FROM products p WHERE p.license_id = l.id)
		ORDER BY l.upload_date`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		license := &models.License{}
		if err := scanLicense(rows, license); err != nil {
			return nil, err
		}
		licenses = append(licenses, license)
	}
	return licenses, rows.Err()
}

// CountByObjectKey counts the licenses sharing a stored file. Sibling licenses
// split from one upload point at the same object.
func (r *licenseRepo) CountByObjectKey(ctx context.Context, objectKey string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM licenses WHERE object_key = $1`, objectKey).Scan(&n)
	return n, err
}
