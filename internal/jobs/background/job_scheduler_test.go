package background

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"licensewatch/internal/models"
)

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

func TestNewJobScheduler_RegistersEnabledJobs(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		jobs     []string
	}{
		{"both", Schedule{ExpiryScanInterval: time.Hour, DashboardRefreshPeriod: time.Hour}, []string{dashboardRefreshJob, expiryScanJob}},
		{"expiry only", Schedule{ExpiryScanInterval: time.Hour}, []string{expiryScanJob}},
		{"none", Schedule{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			js, err := NewJobScheduler(nil, new(MockDashboardService), tt.schedule)
			require.NoError(t, err)

			js.Start()
			assert.Equal(t, tt.jobs, js.JobNames())
			assert.NoError(t, js.Stop())
		})
	}
}

func TestRefreshDashboard(t *testing.T) {
	dashboard := new(MockDashboardService)
	dashboard.On("Refresh", mock.Anything).Return(&models.DashboardSummary{TotalLicenses: 3}, nil).Once()
	dashboard.On("Refresh", mock.Anything).Return(nil, errors.New("db down")).Once()

	js, err := NewJobScheduler(nil, dashboard, Schedule{Location: time.UTC})
	require.NoError(t, err)
	js.Start()
	defer js.Stop()

	assert.NoError(t, js.refreshDashboard())
	assert.Error(t, js.refreshDashboard())
	dashboard.AssertExpectations(t)
}
