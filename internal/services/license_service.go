package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/caching"
	"licensewatch/internal/common"
	"licensewatch/internal/models"
	"licensewatch/internal/parser"
	"licensewatch/internal/reconcile"
	"licensewatch/internal/repositories"
	"licensewatch/pkg/clock"
	"licensewatch/pkg/database"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxExpiringDays = 365
)

type UploadRequest struct {
	FileName    string
	Content     []byte
	ManagerName string
	Department  string
	ClientName  string
}

type UploadResult struct {
	LicenseID uuid.UUID             `json:"license_id"`
	Summary   parser.LicenseSummary `json:"summary"`
	Products  int                   `json:"products"`
	Skipped   int                   `json:"skipped_features"`
	Warnings  []string              `json:"warnings,omitempty"`
}

type ListFilter struct {
	Page       int
	Limit      int
	SiteID     *uuid.UUID
	Department string
	Status     string
	Search     string
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type ListResult struct {
	Licenses   []models.LicenseListItem `json:"licenses"`
	Pagination Pagination               `json:"pagination"`
}

// FeatureView is a stored feature with its status as of the request.
type FeatureView struct {
	models.LicenseFeature
	parser.StatusResult
}

type LicenseDetail struct {
	models.LicenseListItem
	Features []FeatureView               `json:"features"`
	Products []*models.Product           `json:"products"`
	ByStatus map[parser.ExpiryStatus]int `json:"by_status"`
}

// ExpiringLicense groups the features of one license that fall in an expiry window.
type ExpiringLicense struct {
	LicenseID  uuid.UUID     `json:"license_id"`
	FileName   string        `json:"file_name"`
	SiteName   string        `json:"site_name"`
	SiteNumber string        `json:"site_number"`
	Department *string       `json:"department"`
	Features   []FeatureView `json:"features"`
}

type LicenseService interface {
	Validate(content []byte) parser.ValidationResult
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*LicenseDetail, error)
	Content(ctx context.Context, id uuid.UUID) (string, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes models.LicenseNotes) error
	Delete(ctx context.Context, id uuid.UUID) error
	Expiring(ctx context.Context, days int) ([]*ExpiringLicense, error)
}

type licenseService struct {
	db          database.DBTX
	siteRepo    repositories.SiteRepository
	licenseRepo repositories.LicenseRepository
	featureRepo repositories.FeatureRepository
	productRepo repositories.ProductRepository
	reconciler  *ProductReconciler
	store       LicenseFileStore
	cache       caching.CacheService
	clock       clock.Clock
	parseOpts   parser.Options
}

func NewLicenseService(db database.DBTX, siteRepo repositories.SiteRepository, licenseRepo repositories.LicenseRepository, featureRepo repositories.FeatureRepository, productRepo repositories.ProductRepository, store LicenseFileStore, cache caching.CacheService, clk clock.Clock, legacyDates bool) LicenseService {
	return &licenseService{
		db:          db,
		siteRepo:    siteRepo,
		licenseRepo: licenseRepo,
		featureRepo: featureRepo,
		productRepo: productRepo,
		reconciler:  NewProductReconciler(licenseRepo, featureRepo, productRepo),
		store:       store,
		cache:       cache,
		clock:       clk,
		parseOpts:   parser.Options{LegacyDateFallback: legacyDates, Now: clk.Now},
	}
}

func (s *licenseService) Validate(content []byte) parser.ValidationResult {
	return parser.Validate(string(content))
}

// Upload validates and parses a license file, keeps the original in the object
// store, and records site, license, features and products in one transaction.
// Features whose dates cannot be normalized are not stored; they are reported as
// warnings.
func (s *licenseService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	text := string(req.Content)
	if v := parser.Validate(text); !v.IsValid {
		return nil, &ValidationError{Reasons: v.Reasons}
	}

	parsed, err := parser.ParseWithOptions(text, s.parseOpts)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	licenseID := uuid.New()
	objectKey := ObjectKey(licenseID, req.FileName)
	if err := s.store.Put(ctx, objectKey, req.Content); err != nil {
		return nil, fmt.Errorf("store license file: %w", err)
	}

	part := parsed.Part()
	license := &models.License{
		ID:          licenseID,
		HostID:      optional(parsed.Site.HostID),
		PartNumber:  optional(part.PartNumber),
		PartName:    optional(part.PartName),
		Quantity:    part.Quantity,
		FileName:    req.FileName,
		ObjectKey:   &objectKey,
		ManagerName: optional(req.ManagerName),
		Department:  optional(req.Department),
		ClientName:  optional(req.ClientName),
		UploadDate:  now,
	}

	result := &UploadResult{LicenseID: licenseID, Summary: parser.Summarize(parsed, now)}
	for _, w := range parsed.Warnings() {
		result.Warnings = append(result.Warnings, w.Error())
	}

	err = database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		site := siteFromParse(parsed.Site)
		siteID, err := s.siteRepo.WithTx(tx).Upsert(ctx, site)
		if err != nil {
			return fmt.Errorf("upsert site: %w", err)
		}
		license.SiteID = siteID

		if err := s.licenseRepo.WithTx(tx).Create(ctx, license); err != nil {
			return fmt.Errorf("create license: %w", err)
		}

		var stored []*models.LicenseFeature
		for _, entry := range parsed.Features() {
			if !entry.HasValidDates() {
				result.Skipped++
				continue
			}
			feature := featureFromEntry(licenseID, entry)
			if err := s.featureRepo.WithTx(tx).Create(ctx, feature); err != nil {
				return fmt.Errorf("create feature %s: %w", entry.FeatureName, err)
			}
			stored = append(stored, feature)
		}

		plan := reconcile.Plan(reconcile.Input{
			License:  ReconcileLicense(license),
			Features: StoredFeatures(stored),
			Products: parsed.Products,
		}, now)
		stats, err := s.reconciler.Apply(ctx, tx, license, plan)
		if err != nil {
			return err
		}
		result.Products = stats.Products
		return nil
	})
	if err != nil {
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), objectKey); rmErr != nil {
			logrus.WithError(rmErr).WithField("object_key", objectKey).Warn("failed to remove orphaned license file")
		}
		return nil, err
	}

	s.invalidateDashboard(ctx)

	logrus.WithFields(logrus.Fields{
		"license_id": licenseID,
		"file_name":  req.FileName,
		"features":   result.Summary.TotalFeatures,
		"products":   result.Products,
		"skipped":    result.Skipped,
	}).Info("license uploaded")

	return result, nil
}

func (s *licenseService) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	switch filter.Status {
	case "", "expired", "expiring", "active":
	default:
		return nil, fmt.Errorf("%w: unknown status filter %q", ErrInvalidInput, filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	items, total, err := s.licenseRepo.List(ctx, models.LicenseFilter{
		SiteID:     filter.SiteID,
		Department: filter.Department,
		Status:     filter.Status,
		Search:     filter.Search,
		Today:      clock.Today(s.clock),
		Limit:      filter.Limit,
		Offset:     (filter.Page - 1) * filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Licenses: items,
		Pagination: Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: (total + filter.Limit - 1) / filter.Limit,
		},
	}, nil
}

func (s *licenseService) Get(ctx context.Context, id uuid.UUID) (*LicenseDetail, error) {
	item, err := s.licenseRepo.GetItem(ctx, id, clock.Today(s.clock))
	if err != nil {
		return nil, err
	}
	features, err := s.featureRepo.ListByLicense(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.ListByLicense(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	detail := &LicenseDetail{
		LicenseListItem: *item,
		Features:        make([]FeatureView, 0, len(features)),
		Products:        products,
	}
	entries := make([]parser.FeatureEntry, 0, len(features))
	for _, f := range features {
		detail.Features = append(detail.Features, featureView(f, now))
		entries = append(entries, parser.FeatureEntry{FeatureName: f.FeatureName, ExpiryDate: common.SafeString(f.ExpiryDate)})
	}
	detail.ByStatus = parser.SummarizeFeatures(entries, now).ByStatus
	return detail, nil
}

func (s *licenseService) Content(ctx context.Context, id uuid.UUID) (string, error) {
	license, err := s.licenseRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if license.ObjectKey == nil {
		return "", ErrObjectNotFound
	}
	data, err := s.store.Get(ctx, *license.ObjectKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *licenseService) UpdateNotes(ctx context.Context, id uuid.UUID, notes models.LicenseNotes) error {
	if err := s.licenseRepo.UpdateNotes(ctx, id, notes); err != nil {
		return err
	}
	s.invalidateDashboard(ctx)
	return nil
}

// Delete removes a license with its products and features. The stored file is
// removed once no sibling license refers to it.
func (s *licenseService) Delete(ctx context.Context, id uuid.UUID) error {
	license, err := s.licenseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		// features reference products
		if err := s.featureRepo.WithTx(tx).DeleteByLicense(ctx, id); err != nil {
			return fmt.Errorf("delete features: %w", err)
		}
		if err := s.productRepo.WithTx(tx).DeleteByLicense(ctx, id); err != nil {
			return fmt.Errorf("delete products: %w", err)
		}
		return s.licenseRepo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if license.ObjectKey != nil {
		s.removeUnreferenced(ctx, *license.ObjectKey)
	}
	s.invalidateDashboard(ctx)

	logrus.WithField("license_id", id).Info("license deleted")
	return nil
}

func (s *licenseService) removeUnreferenced(ctx context.Context, objectKey string) {
	log := logrus.WithField("object_key", objectKey)
	remaining, err := s.licenseRepo.CountByObjectKey(ctx, objectKey)
	if err != nil {
		log.WithError(err).Warn("failed to count license file references")
		return
	}
	if remaining > 0 {
		return
	}
	if err := s.store.Remove(ctx, objectKey); err != nil {
		log.WithError(err).Warn("failed to remove license file")
	}
}

// Expiring lists licenses with at least one feature expiring within days, counting
// today. Licenses are ordered by their soonest expiry.
func (s *licenseService) Expiring(ctx context.Context, days int) ([]*ExpiringLicense, error) {
	if days < 0 || days > maxExpiringDays {
		return nil, fmt.Errorf("%w: days must be between 0 and %d", ErrInvalidInput, maxExpiringDays)
	}

	today := clock.Today(s.clock)
	features, err := s.featureRepo.ListExpiring(ctx, today, today.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}

	return groupByLicense(features, s.clock.Now()), nil
}

func (s *licenseService) invalidateDashboard(ctx context.Context) {
	if err := s.cache.InvalidateDashboard(ctx); err != nil {
		logrus.WithError(err).Warn("failed to invalidate dashboard cache")
	}
}

// groupByLicense keeps the order of the first feature seen per license; features
// arrive soonest first.
func groupByLicense(features []*models.ExpiringFeature, now time.Time) []*ExpiringLicense {
	byID := make(map[uuid.UUID]*ExpiringLicense)
	licenses := []*ExpiringLicense{}
	for _, f := range features {
		group, ok := byID[f.LicenseID]
		if !ok {
			group = &ExpiringLicense{
				LicenseID:  f.LicenseID,
				FileName:   f.FileName,
				SiteName:   f.SiteName,
				SiteNumber: f.SiteNumber,
				Department: f.Department,
			}
			byID[f.LicenseID] = group
			licenses = append(licenses, group)
		}
		group.Features = append(group.Features, featureView(&f.LicenseFeature, now))
	}
	return licenses
}

func featureView(f *models.LicenseFeature, now time.Time) FeatureView {
	return FeatureView{
		LicenseFeature: *f,
		StatusResult:   parser.ClassifyStatus(common.SafeString(f.ExpiryDate), now),
	}
}

func siteFromParse(info parser.SiteInfo) *models.Site {
	site := &models.Site{
		SiteName:     info.SiteName,
		SiteNumber:   info.SiteNumber,
		FullSiteName: optional(info.FullSiteName),
	}
	if site.SiteName == "" {
		site.SiteName = parser.UnknownSiteName
	}
	return site
}

func featureFromEntry(licenseID uuid.UUID, entry parser.FeatureEntry) *models.LicenseFeature {
	return &models.LicenseFeature{
		ID:             uuid.New(),
		LicenseID:      licenseID,
		FeatureName:    entry.FeatureName,
		Version:        optional(entry.Version),
		StartDate:      optional(entry.StartDate),
		ExpiryDate:     optional(entry.ExpiryDate),
		SerialNumber:   optional(entry.SerialNumber),
		ExpiryInferred: entry.ExpiryInferred,
	}
}

// IsNotFound reports whether err means the addressed license or file is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound) || errors.Is(err, ErrObjectNotFound)
}
