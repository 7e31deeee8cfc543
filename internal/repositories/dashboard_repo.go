package repositories

import (
	"context"
	"time"

	"licensewatch/internal/models"
	"licensewatch/internal/parser"
	"licensewatch/pkg/database"
)

// DashboardRepository computes the aggregate counters behind the dashboard.
type DashboardRepository interface {
	Totals(ctx context.Context, today time.Time) (*models.DashboardSummary, error)
	Departments(ctx context.Context) ([]models.DepartmentCount, error)
}

type dashboardRepo struct {
	db database.Querier
}

func NewDashboardRepository(db database.Querier) DashboardRepository {
	return &dashboardRepo{db: db}
}

// Totals fills the counters of a summary. $1 is today; the expiring windows are
// parser.SoonDays and parser.WarningDays, inclusive. Features without an expiry date
// fall in none of the expiry counters.
func (r *dashboardRepo) Totals(ctx context.Context, today time.Time) (*models.DashboardSummary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM licenses),
			(SELECT COUNT(*) FROM license_features),
			(SELECT COUNT(DISTINCT site_id) FROM licenses),
			(SELECT COUNT(*) FROM license_features WHERE expiry_date >= $1::date AND expiry_date <= $1::date + $2::int),
			(SELECT COUNT(*) FROM license_features WHERE expiry_date >= $1::date AND expiry_date <= $1::date + $3::int),
			(SELECT COUNT(*) FROM license_features WHERE expiry_date < $1::date),
			(SELECT COUNT(*) FROM license_features WHERE expiry_date > $1::date + $2::int),
			(SELECT ` + dateColumn("MIN(expiry_date)") + ` FROM license_features),
			(SELECT ` + dateColumn("MAX(expiry_date)") + ` FROM license_features)
	`
	s := &models.DashboardSummary{}
	err := r.db.QueryRow(ctx, query, today, parser.WarningDays, parser.SoonDays).Scan(
		&s.TotalLicenses, &s.TotalFeatures, &s.ActiveSites, &s.Expiring30, &s.Expiring7, &s.Expired, &s.Active,
		&s.ExpiryRange.Earliest, &s.ExpiryRange.Latest)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *dashboardRepo) Departments(ctx context.Context) ([]models.DepartmentCount, error) {
	query := `
		SELECT COALESCE(NULLIF(department, ''), 'unassigned') AS dept, COUNT(*)
		FROM licenses
		GROUP BY dept
		ORDER BY COUNT(*) DESC, dept
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := []models.DepartmentCount{}
	for rows.Next() {
		var d models.DepartmentCount
		if err := rows.Scan(&d.Department, &d.Count); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}
