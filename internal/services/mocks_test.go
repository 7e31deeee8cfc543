package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"licensewatch/internal/models"
	"licensewatch/internal/repositories"
)

type MockSiteRepository struct {
	mock.Mock
}

func (m *MockSiteRepository) Upsert(ctx context.Context, site *models.Site) (uuid.UUID, error) {
	args := m.Called(ctx, site)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockSiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Site), args.Error(1)
}

func (m *MockSiteRepository) WithTx(pgx.Tx) repositories.SiteRepository { return m }

type MockLicenseRepository struct {
	mock.Mock
}

func (m *MockLicenseRepository) Create(ctx context.Context, license *models.License) error {
	args := m.Called(ctx, license)
	if license.ID == uuid.Nil {
		license.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockLicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) GetItem(ctx context.Context, id uuid.UUID, today time.Time) (*models.LicenseListItem, error) {
	args := m.Called(ctx, id, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LicenseListItem), args.Error(1)
}

func (m *MockLicenseRepository) List(ctx context.Context, filter models.LicenseFilter) ([]models.LicenseListItem, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.LicenseListItem), args.Int(1), args.Error(2)
}

func (m *MockLicenseRepository) Recent(ctx context.Context, limit int, today time.Time) ([]models.LicenseListItem, error) {
	args := m.Called(ctx, limit, today)
	return args.Get(0).([]models.LicenseListItem), args.Error(1)
}

func (m *MockLicenseRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes models.LicenseNotes) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func (m *MockLicenseRepository) UpdatePart(ctx context.Context, id uuid.UUID, partNumber, partName string) error {
	args := m.Called(ctx, id, partNumber, partName)
	return args.Error(0)
}

func (m *MockLicenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLicenseRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) ListWithoutProducts(ctx context.Context) ([]*models.License, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseRepository) CountByObjectKey(ctx context.Context, objectKey string) (int, error) {
	args := m.Called(ctx, objectKey)
	return args.Int(0), args.Error(1)
}

func (m *MockLicenseRepository) WithTx(pgx.Tx) repositories.LicenseRepository { return m }

type MockFeatureRepository struct {
	mock.Mock
}

func (m *MockFeatureRepository) Create(ctx context.Context, feature *models.LicenseFeature) error {
	args := m.Called(ctx, feature)
	return args.Error(0)
}

func (m *MockFeatureRepository) ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*models.LicenseFeature, error) {
	args := m.Called(ctx, licenseID)
	return args.Get(0).([]*models.LicenseFeature), args.Error(1)
}

func (m *MockFeatureRepository) ListExpiring(ctx context.Context, from, to time.Time) ([]*models.ExpiringFeature, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]*models.ExpiringFeature), args.Error(1)
}

func (m *MockFeatureRepository) LinkToProduct(ctx context.Context, featureID, productID, licenseID, originalLicenseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, featureID, productID, licenseID, originalLicenseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFeatureRepository) DeleteByLicense(ctx context.Context, licenseID uuid.UUID) error {
	args := m.Called(ctx, licenseID)
	return args.Error(0)
}

func (m *MockFeatureRepository) LinkStats(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockFeatureRepository) WithTx(pgx.Tx) repositories.FeatureRepository { return m }

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockProductRepository) ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*models.Product, error) {
	args := m.Called(ctx, licenseID)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsForLicense(ctx context.Context, licenseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, licenseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) DeleteByLicense(ctx context.Context, licenseID uuid.UUID) error {
	args := m.Called(ctx, licenseID)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) WithTx(pgx.Tx) repositories.ProductRepository { return m }

type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Totals(ctx context.Context, today time.Time) (*models.DashboardSummary, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardSummary), args.Error(1)
}

func (m *MockDashboardRepository) Departments(ctx context.Context) ([]models.DepartmentCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.DepartmentCount), args.Error(1)
}

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Put(ctx context.Context, key string, content []byte) error {
	args := m.Called(ctx, key, content)
	return args.Error(0)
}

func (m *MockFileStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFileStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockFileStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStore) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFileStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetDashboard(ctx context.Context) (*models.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardSummary), args.Error(1)
}

func (m *MockCacheService) SetDashboard(ctx context.Context, summary *models.DashboardSummary, ttl time.Duration) error {
	args := m.Called(ctx, summary, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateDashboard(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
