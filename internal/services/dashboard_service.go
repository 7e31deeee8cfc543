package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"licensewatch/internal/caching"
	"licensewatch/internal/models"
	"licensewatch/internal/repositories"
	"licensewatch/pkg/clock"
)

const recentUploadsLimit = 5

type DashboardService interface {
	// Summary serves the cached summary when present.
	Summary(ctx context.Context) (*models.DashboardSummary, error)
	// Refresh recomputes the summary and stores it in the cache.
	Refresh(ctx context.Context) (*models.DashboardSummary, error)
}

type dashboardService struct {
	dashboardRepo repositories.DashboardRepository
	licenseRepo   repositories.LicenseRepository
	cache         caching.CacheService
	clock         clock.Clock
	ttl           time.Duration
}

func NewDashboardService(dashboardRepo repositories.DashboardRepository, licenseRepo repositories.LicenseRepository, cache caching.CacheService, clk clock.Clock, ttl time.Duration) DashboardService {
	return &dashboardService{
		dashboardRepo: dashboardRepo,
		licenseRepo:   licenseRepo,
		cache:         cache,
		clock:         clk,
		ttl:           ttl,
	}
}

func (s *dashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if cached, err := s.cache.GetDashboard(ctx); cached != nil {
		return cached, nil
	} else if err != nil {
		logrus.WithError(err).Warn("dashboard cache read failed")
	}
	return s.Refresh(ctx)
}

func (s *dashboardService) Refresh(ctx context.Context) (*models.DashboardSummary, error) {
	now := s.clock.Now()
	today := clock.Today(s.clock)

	summary, err := s.dashboardRepo.Totals(ctx, today)
	if err != nil {
		return nil, err
	}
	if summary.Departments, err = s.dashboardRepo.Departments(ctx); err != nil {
		return nil, err
	}
	if summary.RecentUploads, err = s.licenseRepo.Recent(ctx, recentUploadsLimit, today); err != nil {
		return nil, err
	}
	summary.ByStatus = map[string]int{
		"expired":  summary.Expired,
		"expiring": summary.Expiring30,
		"active":   summary.Active,
	}
	summary.GeneratedAt = now.Format(time.RFC3339)

	if err := s.cache.SetDashboard(ctx, summary, s.ttl); err != nil {
		logrus.WithError(err).Warn("dashboard cache write failed")
	}
	return summary, nil
}
