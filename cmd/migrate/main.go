// Command migrate backfills product rows for licenses stored before products were
// tracked. It is safe to run while the server is up and safe to run again.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"licensewatch/internal/caching"
	"licensewatch/internal/config"
	"licensewatch/internal/jobs"
	"licensewatch/internal/repositories"
	"licensewatch/internal/services"
	"licensewatch/pkg/clock"
	"licensewatch/pkg/database"
	"licensewatch/pkg/logger"
)

func main() {
	licenseFlag := pflag.StringP("license", "l", "", "migrate a single license id")
	lockTries := pflag.Int("lock-tries", caching.DefaultLockOptions().Tries, "attempts to take each license lock")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.RequireDatabase(); err != nil {
		logrus.Fatal(err)
	}
	loc, err := cfg.Location()
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer pool.Close()

	store, err := services.NewMinioStore(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.UseSSL, cfg.MinIO.Bucket)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize MinIO client")
	}

	cacheSvc := caching.NewNoopCacheService()
	locker := caching.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer redisClient.Close()
		cacheSvc = caching.NewRedisCacheService(redisClient)

		opts := caching.DefaultLockOptions()
		opts.Tries = *lockTries
		locker = caching.NewRedisLocker(redisClient, opts)
	} else {
		logrus.Warn("REDIS_ADDR not set, licenses are locked in this process only")
	}

	licenseRepo := repositories.NewLicenseRepository(pool)
	migration := jobs.NewProductMigration(pool, licenseRepo, repositories.NewFeatureRepository(pool),
		repositories.NewProductRepository(pool), store, locker, cacheSvc, clock.System(loc))

	if *licenseFlag != "" {
		id, err := uuid.Parse(*licenseFlag)
		if err != nil {
			logrus.WithError(err).Fatal("Invalid license id")
		}
		license, err := licenseRepo.GetByID(ctx, id)
		if err != nil {
			logrus.WithError(err).WithField("license_id", id).Fatal("Failed to load license")
		}
		stats, migrated, err := migration.MigrateLicense(ctx, license)
		if err != nil {
			logrus.WithError(err).WithField("license_id", id).Fatal("License migration failed")
		}
		if migrated {
			if err := cacheSvc.InvalidateDashboard(ctx); err != nil {
				logrus.WithError(err).Warn("Failed to invalidate dashboard cache")
			}
		}
		logrus.WithFields(logrus.Fields{
			"license_id": id,
			"migrated":   migrated,
			"products":   stats.Products,
			"siblings":   stats.Licenses,
			"linked":     stats.Linked,
			"unlinked":   stats.Unlinked,
		}).Info("License migration finished")
		return
	}

	report, err := migration.Run(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Product migration failed")
	}
	if report.Failed > 0 {
		logrus.WithField("failed", report.Failed).Warn("Some licenses were not migrated; run again to retry them")
		pool.Close()
		os.Exit(1)
	}
}
