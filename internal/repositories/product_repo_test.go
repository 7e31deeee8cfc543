package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensewatch/internal/models"
)

func TestProductCreate_AssignsID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	product := &models.Product{
		LicenseID:      uuid.New(),
		PartNumber:     "6000123",
		ProductName:    "SIMATIC WinCC Runtime",
		Quantity:       2,
		EarliestExpiry: stringPtr("2026-08-04"),
		LatestExpiry:   stringPtr("2026-08-04"),
		Status:         "active",
	}

	mock.ExpectExec(`INSERT INTO products`).
		WithArgs(pgxmock.AnyArg(), product.LicenseID, "6000123", "SIMATIC WinCC Runtime", 2,
			product.EarliestExpiry, product.LatestExpiry, "active").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewProductRepository(mock)
	require.NoError(t, repo.Create(context.Background(), product))
	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductListByLicense(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	licenseID := uuid.New()
	created := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "license_id", "part_number", "product_name", "quantity",
		"earliest_expiry_date", "latest_expiry_date", "status", "created_at"}).
		AddRow(uuid.New(), licenseID, "6000123", "SIMATIC WinCC Runtime", 2, stringPtr("2026-08-04"), stringPtr("2026-08-04"), "active", created).
		AddRow(uuid.New(), licenseID, "6000456", "SIMATIC PCS 7 Engineering", 1, nil, nil, "active", created)

	mock.ExpectQuery(`SELECT .* FROM products WHERE license_id = \$1 ORDER BY created_at`).
		WithArgs(licenseID).
		WillReturnRows(rows)

	products, err := NewProductRepository(mock).ListByLicense(context.Background(), licenseID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "6000123", products[0].PartNumber)
	assert.Equal(t, "2026-08-04", *products[0].EarliestExpiry)
	assert.Nil(t, products[1].EarliestExpiry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductExistsForLicense(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	licenseID := uuid.New()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM products WHERE license_id = \$1\)`).
		WithArgs(licenseID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewProductRepository(mock).ExistsForLicense(context.Background(), licenseID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDeleteByLicense_InTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	licenseID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM products WHERE license_id = \$1`).
		WithArgs(licenseID).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	err = NewProductRepository(mock).WithTx(tx).DeleteByLicense(context.Background(), licenseID)
	assert.EqualError(t, err, "lock timeout")
	require.NoError(t, tx.Rollback(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
