package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"licensewatch/internal/models"
	"licensewatch/internal/parser"
	"licensewatch/pkg/database"
)

type SiteRepository interface {
	Upsert(ctx context.Context, site *models.Site) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error)
	WithTx(tx pgx.Tx) SiteRepository
}

type siteRepo struct {
	db database.Querier
}

func NewSiteRepository(db database.Querier) SiteRepository {
	return &siteRepo{db: db}
}

func (r *siteRepo) WithTx(tx pgx.Tx) SiteRepository {
	return &siteRepo{db: tx}
}

// Upsert inserts a site keyed by site_number or refreshes the existing row. A
// placeholder name never overwrites a real one. It returns the id of the stored row.
func (r *siteRepo) Upsert(ctx context.Context, site *models.Site) (uuid.UUID, error) {
	query := `
		INSERT INTO sites (id, site_name, site_number, full_site_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (site_number) DO UPDATE SET
			site_name = CASE WHEN EXCLUDED.site_name = $5 THEN sites.site_name ELSE EXCLUDED.site_name END,
			full_site_name = COALESCE(EXCLUDED.full_site_name, sites.full_site_name),
			updated_at = NOW()
		RETURNING id
	`
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, site.ID, site.SiteName, site.SiteNumber, site.FullSiteName, parser.UnknownSiteName).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	site.ID = id
	return id, nil
}

func (r *siteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	site := &models.Site{}
	query := `
		SELECT id, site_name, site_number, full_site_name, created_at, updated_at
		FROM sites
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&site.ID, &site.SiteName, &site.SiteNumber, &site.FullSiteName, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return site, nil
}
