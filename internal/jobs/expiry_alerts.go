package jobs

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/common"
	"licensewatch/internal/parser"
	"licensewatch/internal/repositories"
	"licensewatch/pkg/clock"
)

const defaultAlertDays = parser.WarningDays

type ExpiryAlertService struct {
	featureRepo repositories.FeatureRepository
	clock       clock.Clock
}

// ExpiryAlert is every feature of one license that shares an expiry status.
type ExpiryAlert struct {
	LicenseID      uuid.UUID
	FileName       string
	SiteName       string
	Department     string
	Status         parser.ExpiryStatus
	Features       []string
	EarliestExpiry string
	DaysLeft       int
}

func NewExpiryAlertService(featureRepo repositories.FeatureRepository, clk clock.Clock) *ExpiryAlertService {
	return &ExpiryAlertService{
		featureRepo: featureRepo,
		clock:       clk,
	}
}

// CheckExpiring groups the features expiring within days, most urgent first.
func (a *ExpiryAlertService) CheckExpiring(ctx context.Context, days int) ([]ExpiryAlert, error) {
	if days <= 0 {
		days = defaultAlertDays
	}

	now := a.clock.Now()
	today := clock.Today(a.clock)
	features, err := a.featureRepo.ListExpiring(ctx, today, today.AddDate(0, 0, days))
	if err != nil {
		logrus.WithError(err).Error("failed to list expiring features")
		return nil, err
	}

	type alertKey struct {
		licenseID uuid.UUID
		status    parser.ExpiryStatus
	}
	index := make(map[alertKey]int)
	var alerts []ExpiryAlert

	for _, f := range features {
		if f.ExpiryDate == nil {
			continue
		}
		result := parser.ClassifyStatus(*f.ExpiryDate, now)
		key := alertKey{licenseID: f.LicenseID, status: result.Status}

		i, ok := index[key]
		if !ok {
			alerts = append(alerts, ExpiryAlert{
				LicenseID:      f.LicenseID,
				FileName:       f.FileName,
				SiteName:       f.SiteName,
				Department:     common.SafeString(f.Department),
				Status:         result.Status,
				EarliestExpiry: *f.ExpiryDate,
				DaysLeft:       result.DaysLeft,
			})
			i = len(alerts) - 1
			index[key] = i
		}

		alert := &alerts[i]
		alert.Features = append(alert.Features, f.FeatureName)
		if *f.ExpiryDate < alert.EarliestExpiry {
			alert.EarliestExpiry = *f.ExpiryDate
			alert.DaysLeft = result.DaysLeft
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Status.Severity() != alerts[j].Status.Severity() {
			return alerts[i].Status.Severity() > alerts[j].Status.Severity()
		}
		return alerts[i].DaysLeft < alerts[j].DaysLeft
	})
	return alerts, nil
}

func (a *ExpiryAlertService) LogAlerts(alerts []ExpiryAlert) {
	if len(alerts) == 0 {
		logrus.Info("No expiring licenses")
		return
	}

	for _, alert := range alerts {
		entry := logrus.WithFields(logrus.Fields{
			"license_id":      alert.LicenseID,
			"file_name":       alert.FileName,
			"site":            alert.SiteName,
			"department":      alert.Department,
			"status":          alert.Status,
			"features":        len(alert.Features),
			"earliest_expiry": alert.EarliestExpiry,
			"days_left":       alert.DaysLeft,
		})
		if alert.Status.Severity() >= parser.StatusExpiresSoon.Severity() {
			entry.Warn("license features expiring")
		} else {
			entry.Info("license features expiring")
		}
	}
}

// ScheduledExpiryCheck is the scheduler entry point.
func (a *ExpiryAlertService) ScheduledExpiryCheck(ctx context.Context, days int) error {
	alerts, err := a.CheckExpiring(ctx, days)
	if err != nil {
		return err
	}
	a.LogAlerts(alerts)
	return nil
}
