package caching

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/models"
)

const dashboardSummaryKey = "licensewatch:dashboard:summary"

type CacheService interface {
	// Dashboard caching
	GetDashboard(ctx context.Context) (*models.DashboardSummary, error)
	SetDashboard(ctx context.Context, summary *models.DashboardSummary, ttl time.Duration) error
	InvalidateDashboard(ctx context.Context) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient builds a client from an address that may carry a redis:// or
// rediss:// scheme.
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).WithField("addr", parsedAddr).Warn("redis ping failed on initialization")
	} else {
		logrus.WithField("addr", parsedAddr).Debug("redis connection established")
	}
	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

// GetDashboard returns nil, nil on a cache miss.
func (r *redisCacheService) GetDashboard(ctx context.Context) (*models.DashboardSummary, error) {
	data, err := r.client.Get(ctx, dashboardSummaryKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var summary models.DashboardSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *redisCacheService) SetDashboard(ctx context.Context, summary *models.DashboardSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, dashboardSummaryKey, data, ttl).Err()
}

func (r *redisCacheService) InvalidateDashboard(ctx context.Context) error {
	return r.client.Del(ctx, dashboardSummaryKey).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type noopCacheService struct{}

// NewNoopCacheService returns a cache that never hits. Used when no Redis
// address is configured.
func NewNoopCacheService() CacheService {
	return noopCacheService{}
}

func (noopCacheService) GetDashboard(context.Context) (*models.DashboardSummary, error) {
	return nil, nil
}

func (noopCacheService) SetDashboard(context.Context, *models.DashboardSummary, time.Duration) error {
	return nil
}

func (noopCacheService) InvalidateDashboard(context.Context) error { return nil }

func (noopCacheService) Ping(context.Context) error { return nil }
