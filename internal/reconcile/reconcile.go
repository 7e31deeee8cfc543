// Package reconcile assigns the stored features of a legacy license record to product
// identities. Plan is pure; the storage layer applies the result in one transaction.
package reconcile

import (
	"time"

	"github.com/google/uuid"

	"licensewatch/internal/parser"
)

// License is the legacy license record being reconciled.
type License struct {
	ID         uuid.UUID
	SiteID     uuid.UUID
	PartNumber string
	PartName   string
}

// StoredFeature is a feature row of the legacy license. Linked is true once the row
// belongs to a product.
type StoredFeature struct {
	ID           uuid.UUID
	FeatureName  string
	SerialNumber string
	ExpiryDate   string
	Linked       bool
}

// Input is everything Plan needs for one license. Products is the re-parse of the
// original file and may be nil when the file is gone.
type Input struct {
	License  License
	Features []StoredFeature
	Products []parser.Product
}

// Assignment is one product to materialize and the features it links.
type Assignment struct {
	// LicenseID is the license that owns the product. It is uuid.Nil when NewLicense
	// is set; storage creates the sibling and fills the id in.
	LicenseID      uuid.UUID
	NewLicense     bool
	Part           parser.PartInfo
	EarliestExpiry *string
	LatestExpiry   *string
	Status         parser.DocumentStatus
	FeatureIDs     []uuid.UUID
}

// Result is the full plan for one license.
type Result struct {
	Assignments []Assignment
	// Linked counts features claimed by this plan; Unlinked counts unlinked features
	// left over after it.
	Linked   int
	Unlinked int
}

// Plan builds the product assignments for a legacy license. A feature that is already
// linked is never claimed, and each unlinked feature is claimed at most once, so
// re-planning a reconciled license links nothing.
func Plan(in Input, now time.Time) Result {
	var res Result
	if len(in.Products) > 1 {
		res.Assignments = splitProducts(in, now)
	} else {
		res.Assignments = []Assignment{synthesize(in, now)}
	}

	for _, a := range res.Assignments {
		res.Linked += len(a.FeatureIDs)
	}
	for _, f := range in.Features {
		if !f.Linked {
			res.Unlinked++
		}
	}
	res.Unlinked -= res.Linked
	return res
}

// Pending reports whether the plan links any feature.
func (r Result) Pending() bool {
	return r.Linked > 0
}

func splitProducts(in Input, now time.Time) []Assignment {
	claimed := make(map[uuid.UUID]bool, len(in.Features))
	assignments := make([]Assignment, 0, len(in.Products))

	for i, product := range in.Products {
		a := Assignment{Part: product.Part}
		if i == 0 {
			a.LicenseID = in.License.ID
		} else {
			a.NewLicense = true
		}
		if a.Part.Quantity < 1 {
			a.Part.Quantity = 1
		}

		summary := parser.SummarizeFeatures(product.Features, now)
		a.EarliestExpiry, a.LatestExpiry = summary.EarliestExpiry, summary.LatestExpiry
		a.Status = documentStatus(product.Features, now)

		for _, pf := range product.Features {
			if id, ok := claim(in.Features, claimed, pf.FeatureName, pf.SerialNumber); ok {
				a.FeatureIDs = append(a.FeatureIDs, id)
			}
		}
		assignments = append(assignments, a)
	}
	return assignments
}

// claim returns the first stored feature matching name and serial that is unlinked
// and not claimed earlier in this plan.
func claim(features []StoredFeature, claimed map[uuid.UUID]bool, name, serial string) (uuid.UUID, bool) {
	for _, f := range features {
		if f.Linked || claimed[f.ID] {
			continue
		}
		if f.FeatureName == name && f.SerialNumber == serial {
			claimed[f.ID] = true
			return f.ID, true
		}
	}
	return uuid.Nil, false
}

func synthesize(in Input, now time.Time) Assignment {
	a := Assignment{
		LicenseID: in.License.ID,
		Part: parser.PartInfo{
			PartNumber: in.License.PartNumber,
			PartName:   in.License.PartName,
			Quantity:   1,
		},
	}

	entries := make([]parser.FeatureEntry, 0, len(in.Features))
	for _, f := range in.Features {
		entries = append(entries, parser.FeatureEntry{FeatureName: f.FeatureName, ExpiryDate: f.ExpiryDate})
		if !f.Linked {
			a.FeatureIDs = append(a.FeatureIDs, f.ID)
		}
	}

	summary := parser.SummarizeFeatures(entries, now)
	a.EarliestExpiry, a.LatestExpiry = summary.EarliestExpiry, summary.LatestExpiry
	a.Status = documentStatus(entries, now)
	return a
}

// documentStatus collapses the most severe feature status. Features without a usable
// expiry are ignored; a product with none of them is active.
func documentStatus(features []parser.FeatureEntry, now time.Time) parser.DocumentStatus {
	worst := parser.StatusActive
	for _, f := range features {
		days, err := parser.DaysLeft(f.ExpiryDate, now)
		if err != nil {
			continue
		}
		if s := parser.ClassifyDays(days); s.Severity() > worst.Severity() {
			worst = s
		}
	}
	return parser.CollapseStatus(worst)
}
