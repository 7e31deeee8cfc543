package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"licensewatch/internal/common"
	"licensewatch/internal/models"
	"licensewatch/internal/reconcile"
	"licensewatch/internal/repositories"
)

// ReconcileStats counts what one application of a plan wrote.
type ReconcileStats struct {
	Licenses int `json:"licenses"`
	Products int `json:"products"`
	Linked   int `json:"linked"`
	Unlinked int `json:"unlinked"`
}

func (s *ReconcileStats) Add(other ReconcileStats) {
	s.Licenses += other.Licenses
	s.Products += other.Products
	s.Linked += other.Linked
	s.Unlinked += other.Unlinked
}

// ProductReconciler materializes reconcile plans: sibling licenses, product rows,
// and feature links.
type ProductReconciler struct {
	licenseRepo repositories.LicenseRepository
	featureRepo repositories.FeatureRepository
	productRepo repositories.ProductRepository
}

func NewProductReconciler(licenseRepo repositories.LicenseRepository, featureRepo repositories.FeatureRepository, productRepo repositories.ProductRepository) *ProductReconciler {
	return &ProductReconciler{
		licenseRepo: licenseRepo,
		featureRepo: featureRepo,
		productRepo: productRepo,
	}
}

// StoredFeatures converts feature rows into reconcile input.
func StoredFeatures(features []*models.LicenseFeature) []reconcile.StoredFeature {
	stored := make([]reconcile.StoredFeature, 0, len(features))
	for _, f := range features {
		stored = append(stored, reconcile.StoredFeature{
			ID:           f.ID,
			FeatureName:  f.FeatureName,
			SerialNumber: common.SafeString(f.SerialNumber),
			ExpiryDate:   common.SafeString(f.ExpiryDate),
			Linked:       f.ProductID != nil,
		})
	}
	return stored
}

// ReconcileLicense converts a license row into reconcile input.
func ReconcileLicense(license *models.License) reconcile.License {
	return reconcile.License{
		ID:         license.ID,
		SiteID:     license.SiteID,
		PartNumber: common.SafeString(license.PartNumber),
		PartName:   common.SafeString(license.PartName),
	}
}

// Apply writes plan inside tx. license is the record the plan was built for. A
// feature that another worker linked first is counted as unlinked here.
func (r *ProductReconciler) Apply(ctx context.Context, tx pgx.Tx, license *models.License, plan reconcile.Result) (ReconcileStats, error) {
	licenseRepo := r.licenseRepo.WithTx(tx)
	featureRepo := r.featureRepo.WithTx(tx)
	productRepo := r.productRepo.WithTx(tx)

	stats := ReconcileStats{Unlinked: plan.Unlinked}
	for i, a := range plan.Assignments {
		ownerID := a.LicenseID
		switch {
		case a.NewLicense:
			sibling := &models.License{
				SiteID:      license.SiteID,
				HostID:      license.HostID,
				PartNumber:  optional(a.Part.PartNumber),
				PartName:    optional(a.Part.PartName),
				Quantity:    a.Part.Quantity,
				FileName:    license.FileName,
				ObjectKey:   license.ObjectKey,
				ManagerName: license.ManagerName,
				Department:  license.Department,
				ClientName:  license.ClientName,
				Memo:        license.Memo,
				UploadDate:  license.UploadDate,
			}
			if err := licenseRepo.Create(ctx, sibling); err != nil {
				return stats, fmt.Errorf("create sibling license %d: %w", i, err)
			}
			ownerID = sibling.ID
			stats.Licenses++
		case i == 0 && !a.Part.IsEmpty() && partChanged(license, a):
			if err := licenseRepo.UpdatePart(ctx, ownerID, a.Part.PartNumber, a.Part.PartName); err != nil {
				return stats, fmt.Errorf("update license part: %w", err)
			}
		}

		product := &models.Product{
			LicenseID:      ownerID,
			PartNumber:     a.Part.PartNumber,
			ProductName:    a.Part.PartName,
			Quantity:       a.Part.Quantity,
			EarliestExpiry: a.EarliestExpiry,
			LatestExpiry:   a.LatestExpiry,
			Status:         string(a.Status),
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return stats, fmt.Errorf("create product %q: %w", a.Part.PartNumber, err)
		}
		stats.Products++

		for _, featureID := range a.FeatureIDs {
			linked, err := featureRepo.LinkToProduct(ctx, featureID, product.ID, ownerID, license.ID)
			if err != nil {
				return stats, fmt.Errorf("link feature %s: %w", featureID, err)
			}
			if linked {
				stats.Linked++
			} else {
				stats.Unlinked++
			}
		}
	}
	return stats, nil
}

func partChanged(license *models.License, a reconcile.Assignment) bool {
	return common.SafeString(license.PartNumber) != a.Part.PartNumber || common.SafeString(license.PartName) != a.Part.PartName
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
