package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"licensewatch/internal/models"
	"licensewatch/pkg/clock"
)

type DashboardServiceTestSuite struct {
	suite.Suite
	dashboardRepo *MockDashboardRepository
	licenseRepo   *MockLicenseRepository
	cache         *MockCacheService
	now           time.Time
	service       DashboardService
	ctx           context.Context
}

func (suite *DashboardServiceTestSuite) SetupTest() {
	suite.dashboardRepo = new(MockDashboardRepository)
	suite.licenseRepo = new(MockLicenseRepository)
	suite.cache = new(MockCacheService)
	suite.now = time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)
	suite.ctx = context.Background()
	suite.service = NewDashboardService(suite.dashboardRepo, suite.licenseRepo, suite.cache, clock.Fixed(suite.now), 5*time.Minute)
}

func (suite *DashboardServiceTestSuite) TearDownTest() {
	suite.dashboardRepo.AssertExpectations(suite.T())
	suite.licenseRepo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestDashboardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceTestSuite))
}

func (suite *DashboardServiceTestSuite) TestSummary_CacheHit() {
	cached := &models.DashboardSummary{TotalLicenses: 7}
	suite.cache.On("GetDashboard", mock.Anything).Return(cached, nil).Once()

	summary, err := suite.service.Summary(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Same(suite.T(), cached, summary)
}

func (suite *DashboardServiceTestSuite) TestSummary_CacheMissComputesAndStores() {
	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	// two of the twenty features have no expiry date
	totals := &models.DashboardSummary{TotalLicenses: 4, TotalFeatures: 20, Expiring30: 5, Expiring7: 2, Expired: 3, Active: 10}
	departments := []models.DepartmentCount{{Department: "automation", Count: 4}}
	recent := []models.LicenseListItem{{SiteName: "Plant"}}

	suite.cache.On("GetDashboard", mock.Anything).Return(nil, nil).Once()
	suite.dashboardRepo.On("Totals", mock.Anything, today).Return(totals, nil).Once()
	suite.dashboardRepo.On("Departments", mock.Anything).Return(departments, nil).Once()
	suite.licenseRepo.On("Recent", mock.Anything, recentUploadsLimit, today).Return(recent, nil).Once()
	suite.cache.On("SetDashboard", mock.Anything, totals, 5*time.Minute).Return(nil).Once()

	summary, err := suite.service.Summary(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), departments, summary.Departments)
	assert.Equal(suite.T(), recent, summary.RecentUploads)
	assert.Equal(suite.T(), map[string]int{"expired": 3, "expiring": 5, "active": 10}, summary.ByStatus)
	assert.Equal(suite.T(), "2025-12-01T09:30:00Z", summary.GeneratedAt)
}

func (suite *DashboardServiceTestSuite) TestSummary_CacheErrorFallsBack() {
	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	suite.cache.On("GetDashboard", mock.Anything).Return(nil, errors.New("redis down")).Once()
	suite.dashboardRepo.On("Totals", mock.Anything, today).Return(&models.DashboardSummary{}, nil).Once()
	suite.dashboardRepo.On("Departments", mock.Anything).Return([]models.DepartmentCount{}, nil).Once()
	suite.licenseRepo.On("Recent", mock.Anything, recentUploadsLimit, today).Return([]models.LicenseListItem{}, nil).Once()
	suite.cache.On("SetDashboard", mock.Anything, mock.Anything, 5*time.Minute).Return(errors.New("redis down")).Once()

	summary, err := suite.service.Summary(suite.ctx)
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), summary)
}

func (suite *DashboardServiceTestSuite) TestRefresh_PropagatesRepositoryError() {
	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	suite.dashboardRepo.On("Totals", mock.Anything, today).Return(nil, errors.New("timeout")).Once()

	_, err := suite.service.Refresh(suite.ctx)
	assert.EqualError(suite.T(), err, "timeout")
}
