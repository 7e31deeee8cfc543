package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"licensewatch/internal/models"
	"licensewatch/pkg/database"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*models.Product, error)
	ExistsForLicense(ctx context.Context, licenseID uuid.UUID) (bool, error)
	DeleteByLicense(ctx context.Context, licenseID uuid.UUID) error
	Count(ctx context.Context) (int, error)
	WithTx(tx pgx.Tx) ProductRepository
}

type productRepo struct {
	db database.Querier
}

func NewProductRepository(db database.Querier) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) WithTx(tx pgx.Tx) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, license_id, part_number, product_name, quantity,
			earliest_expiry_date, latest_expiry_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, query, product.ID, product.LicenseID, product.PartNumber, product.ProductName,
		product.Quantity, product.EarliestExpiry, product.LatestExpiry, product.Status)
	return err
}

func (r *productRepo) ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*models.Product, error) {
	query := `SELECT id, license_id, part_number, product_name, quantity, ` +
		dateColumn("earliest_expiry_date") + `, ` + dateColumn("latest_expiry_date") + `, status, created_at
		FROM products WHERE license_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, licenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.LicenseID, &p.PartNumber, &p.ProductName, &p.Quantity,
			&p.EarliestExpiry, &p.LatestExpiry, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) ExistsForLicense(ctx context.Context, licenseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE license_id = $1)`, licenseID).Scan(&exists)
	return exists, err
}

func (r *productRepo) DeleteByLicense(ctx context.Context, licenseID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM products WHERE license_id = $1`, licenseID)
	return err
}

func (r *productRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
