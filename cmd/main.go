package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/caching"
	"licensewatch/internal/config"
	"licensewatch/internal/handlers"
	"licensewatch/internal/jobs"
	"licensewatch/internal/jobs/background"
	"licensewatch/internal/middleware"
	"licensewatch/internal/repositories"
	"licensewatch/internal/services"
	"licensewatch/pkg/clock"
	"licensewatch/pkg/database"
	"licensewatch/pkg/logger"
)

const version = "1.0.0"

// multipart framing around the file itself
const bodyOverhead = 1 << 20

func main() {
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
	clk := clock.System(loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		logrus.WithError(err).Fatal("Failed to apply schema")
	}

	store, err := services.NewMinioStore(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.UseSSL, cfg.MinIO.Bucket)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize MinIO client")
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logrus.WithError(err).WithField("bucket", cfg.MinIO.Bucket).Fatal("Failed to ensure license bucket")
	}

	cacheSvc := caching.NewNoopCacheService()
	if cfg.Redis.Addr != "" {
		redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer redisClient.Close()
		cacheSvc = caching.NewRedisCacheService(redisClient)
	} else {
		logrus.Warn("REDIS_ADDR not set, dashboard cache disabled")
	}

	siteRepo := repositories.NewSiteRepository(pool)
	licenseRepo := repositories.NewLicenseRepository(pool)
	featureRepo := repositories.NewFeatureRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	dashboardRepo := repositories.NewDashboardRepository(pool)

	licenseSvc := services.NewLicenseService(pool, siteRepo, licenseRepo, featureRepo, productRepo, store, cacheSvc, clk, cfg.LegacyDateFallback)
	dashboardSvc := services.NewDashboardService(dashboardRepo, licenseRepo, cacheSvc, clk, cfg.DashboardCacheTTL)

	scheduler, err := background.NewJobScheduler(jobs.NewExpiryAlertService(featureRepo, clk), dashboardSvc, background.Schedule{
		ExpiryScanInterval:     cfg.ExpiryScanInterval,
		ExpiryAlertDays:        cfg.ExpiryAlertDays,
		DashboardRefreshPeriod: cfg.DashboardRefreshEvery,
		Location:               loc,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create job scheduler")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logrus.WithError(err).Warn("Job scheduler did not stop cleanly")
		}
	}()

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.RequestID())
	e.Use(logger.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.BodyLimit(fmt.Sprintf("%dK", (cfg.MaxFileSize+bodyOverhead)/1024)))

	var auth echo.MiddlewareFunc
	if cfg.AuthEnabled() {
		auth = middleware.JWTAuth(cfg.JWTSecret)
	} else {
		logrus.Warn("JWT_SECRET not set, write routes are unauthenticated")
	}

	handlers.RegisterRoutes(e, handlers.Routes{
		Licenses:  handlers.NewLicenseHandlers(licenseSvc, cfg.MaxFileSize),
		Dashboard: handlers.NewDashboardHandlers(dashboardSvc),
		Health:    handlers.NewHealthHandlers(pool, cacheSvc, store, version),
		Auth:      auth,
	})

	go func() {
		logrus.WithFields(logrus.Fields{
			"version": version,
			"port":    cfg.Port,
		}).Info("licensewatch server starting")
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
}
