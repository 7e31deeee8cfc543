package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/caching"
	"licensewatch/internal/models"
	"licensewatch/internal/parser"
	"licensewatch/internal/reconcile"
	"licensewatch/internal/repositories"
	"licensewatch/internal/services"
	"licensewatch/pkg/clock"
	"licensewatch/pkg/database"
)

// MigrationReport summarizes one run of the product migration.
type MigrationReport struct {
	Candidates int                     `json:"candidates"`
	Migrated   int                     `json:"migrated"`
	Skipped    int                     `json:"skipped"`
	Failed     int                     `json:"failed"`
	Written    services.ReconcileStats `json:"written"`
	// Linked and Unlinked count every feature row after the run.
	Linked   int           `json:"linked"`
	Unlinked int           `json:"unlinked"`
	Duration time.Duration `json:"duration"`
}

// ProductMigration backfills product rows for licenses uploaded before products
// existed. It re-reads the original file when the object store still has it, so
// multi-product files are split into one license per product.
type ProductMigration struct {
	db          database.DBTX
	licenseRepo repositories.LicenseRepository
	featureRepo repositories.FeatureRepository
	productRepo repositories.ProductRepository
	reconciler  *services.ProductReconciler
	store       services.LicenseFileStore
	locker      caching.Locker
	cache       caching.CacheService
	clock       clock.Clock
	parseOpts   parser.Options

	ensureSchema func(ctx context.Context, db database.Querier) error
}

func NewProductMigration(db database.DBTX, licenseRepo repositories.LicenseRepository, featureRepo repositories.FeatureRepository, productRepo repositories.ProductRepository, store services.LicenseFileStore, locker caching.Locker, cache caching.CacheService, clk clock.Clock) *ProductMigration {
	return &ProductMigration{
		db:           db,
		licenseRepo:  licenseRepo,
		featureRepo:  featureRepo,
		productRepo:  productRepo,
		reconciler:   services.NewProductReconciler(licenseRepo, featureRepo, productRepo),
		store:        store,
		locker:       locker,
		cache:        cache,
		clock:        clk,
		parseOpts:    parser.Options{Now: clk.Now},
		ensureSchema: database.EnsureSchema,
	}
}

// Run migrates every license without products. A license that fails is logged and
// left for the next run; Run only returns an error when it cannot start.
func (m *ProductMigration) Run(ctx context.Context) (*MigrationReport, error) {
	start := time.Now()

	if err := m.ensureSchema(ctx, m.db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	licenses, err := m.licenseRepo.ListWithoutProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list licenses without products: %w", err)
	}

	report := &MigrationReport{Candidates: len(licenses)}
	logrus.WithField("candidates", len(licenses)).Info("product migration started")

	for _, license := range licenses {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		log := logrus.WithFields(logrus.Fields{
			"license_id": license.ID,
			"file_name":  license.FileName,
		})

		stats, migrated, err := m.MigrateLicense(ctx, license)
		switch {
		case err != nil:
			report.Failed++
			log.WithError(err).Error("license migration failed")
		case !migrated:
			report.Skipped++
			log.Debug("license already has products")
		default:
			report.Migrated++
			report.Written.Add(stats)
			log.WithFields(logrus.Fields{
				"products": stats.Products,
				"siblings": stats.Licenses,
				"linked":   stats.Linked,
			}).Info("license migrated")
		}
	}

	if report.Migrated > 0 {
		if err := m.cache.InvalidateDashboard(ctx); err != nil {
			logrus.WithError(err).Warn("failed to invalidate dashboard cache")
		}
	}

	report.Linked, report.Unlinked, err = m.featureRepo.LinkStats(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to read feature link stats")
	}
	report.Duration = time.Since(start)

	logrus.WithFields(logrus.Fields{
		"candidates": report.Candidates,
		"migrated":   report.Migrated,
		"skipped":    report.Skipped,
		"failed":     report.Failed,
		"products":   report.Written.Products,
		"siblings":   report.Written.Licenses,
		"linked":     report.Linked,
		"unlinked":   report.Unlinked,
		"duration":   report.Duration.String(),
	}).Info("product migration finished")

	return report, nil
}

// MigrateLicense reconciles one license under its distributed lock and a row lock.
// It reports false without writing when another run already created products.
func (m *ProductMigration) MigrateLicense(ctx context.Context, license *models.License) (services.ReconcileStats, bool, error) {
	var (
		stats    services.ReconcileStats
		migrated bool
	)

	products := m.reparse(ctx, license)

	err := m.locker.WithLock(ctx, caching.LicenseLockKey(license.ID), func(ctx context.Context) error {
		return database.WithTx(ctx, m.db, func(tx pgx.Tx) error {
			locked, err := m.licenseRepo.WithTx(tx).LockForUpdate(ctx, license.ID)
			if err != nil {
				return fmt.Errorf("lock license: %w", err)
			}

			exists, err := m.productRepo.WithTx(tx).ExistsForLicense(ctx, license.ID)
			if err != nil {
				return fmt.Errorf("check products: %w", err)
			}
			if exists {
				return nil
			}

			features, err := m.featureRepo.WithTx(tx).ListByLicense(ctx, license.ID)
			if err != nil {
				return fmt.Errorf("list features: %w", err)
			}

			plan := reconcile.Plan(reconcile.Input{
				License:  services.ReconcileLicense(locked),
				Features: services.StoredFeatures(features),
				Products: products,
			}, m.clock.Now())

			stats, err = m.reconciler.Apply(ctx, tx, locked, plan)
			if err != nil {
				return err
			}
			migrated = true
			return nil
		})
	})
	if err != nil {
		return services.ReconcileStats{}, false, err
	}
	return stats, migrated, nil
}

// reparse returns the products of the stored original file, or nil when the file
// is gone or no longer parses.
func (m *ProductMigration) reparse(ctx context.Context, license *models.License) []parser.Product {
	if license.ObjectKey == nil {
		return nil
	}

	log := logrus.WithFields(logrus.Fields{
		"license_id": license.ID,
		"object_key": *license.ObjectKey,
	})

	content, err := m.store.Get(ctx, *license.ObjectKey)
	if err != nil {
		if errors.Is(err, services.ErrObjectNotFound) {
			log.Debug("original file missing, using stored features")
		} else {
			log.WithError(err).Warn("failed to fetch original file, using stored features")
		}
		return nil
	}

	parsed, err := parser.ParseWithOptions(string(content), m.parseOpts)
	if err != nil {
		log.WithError(err).Warn("original file no longer parses, using stored features")
		return nil
	}
	return parsed.Products
}
