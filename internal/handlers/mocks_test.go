package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"licensewatch/internal/models"
	"licensewatch/internal/parser"
	"licensewatch/internal/services"
)

type MockLicenseService struct {
	mock.Mock
}

func (m *MockLicenseService) Validate(content []byte) parser.ValidationResult {
	args := m.Called(content)
	return args.Get(0).(parser.ValidationResult)
}

func (m *MockLicenseService) Upload(ctx context.Context, req services.UploadRequest) (*services.UploadResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UploadResult), args.Error(1)
}

func (m *MockLicenseService) List(ctx context.Context, filter services.ListFilter) (*services.ListResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ListResult), args.Error(1)
}

func (m *MockLicenseService) Get(ctx context.Context, id uuid.UUID) (*services.LicenseDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LicenseDetail), args.Error(1)
}

func (m *MockLicenseService) Content(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockLicenseService) UpdateNotes(ctx context.Context, id uuid.UUID, notes models.LicenseNotes) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func (m *MockLicenseService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLicenseService) Expiring(ctx context.Context, days int) ([]*services.ExpiringLicense, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*services.ExpiringLicense), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardSummary), args.Error(1)
}

func (m *MockDashboardService) Refresh(ctx context.Context) (*models.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardSummary), args.Error(1)
}

// stubStore only answers pings
type stubStore struct {
	services.LicenseFileStore
	err error
}

func (s stubStore) Ping(context.Context) error { return s.err }

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCache struct {
	err error
}

func (s stubCache) GetDashboard(context.Context) (*models.DashboardSummary, error) { return nil, nil }

func (s stubCache) SetDashboard(context.Context, *models.DashboardSummary, time.Duration) error {
	return nil
}

func (s stubCache) InvalidateDashboard(context.Context) error { return nil }

func (s stubCache) Ping(context.Context) error { return s.err }
