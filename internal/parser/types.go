package parser

import "fmt"

// Placeholders used when only the site number could be recovered from the header.
const (
	UnknownSiteName     = "Unknown Site"
	UnknownFullSiteName = "Unknown Corporation"
)

// SiteInfo identifies the licensed site. SiteNumber is the natural key.
type SiteInfo struct {
	SiteName     string `json:"site_name"`
	SiteNumber   string `json:"site_number"`
	FullSiteName string `json:"full_site_name,omitempty"`
	HostID       string `json:"host_id,omitempty"`
}

// PartInfo is one product identity found in a license body.
type PartInfo struct {
	PartNumber string `json:"part_number"`
	PartName   string `json:"part_name"`
	Quantity   int    `json:"quantity"`
}

// IsEmpty reports whether no product metadata was recognized.
func (p PartInfo) IsEmpty() bool {
	return p.PartNumber == "" && p.PartName == "" && p.Quantity == 0
}

// DateWarning records a date token that could not be normalized.
type DateWarning struct {
	Field string `json:"field"`
	Raw   string `json:"raw"`
	// Substituted is set when the legacy fallback replaced the token with today's date.
	Substituted bool `json:"substituted,omitempty"`
}

func (w DateWarning) Error() string {
	return fmt.Sprintf("%s: %s %q", ErrUnparseableDate.Error(), w.Field, w.Raw)
}

func (w DateWarning) Unwrap() error { return ErrUnparseableDate }

// FeatureEntry is a single feature grant with its validity window.
type FeatureEntry struct {
	FeatureName  string `json:"feature_name"`
	Version      string `json:"version"`
	StartDate    string `json:"start_date"`
	ExpiryDate   string `json:"expiry_date"`
	SerialNumber string `json:"serial_number,omitempty"`
	// ExpiryInferred marks entries from INCREMENT lines, whose source carries a single
	// date that is used for both ends of the window.
	ExpiryInferred bool          `json:"expiry_inferred,omitempty"`
	Warnings       []DateWarning `json:"warnings,omitempty"`
}

// HasValidDates reports whether both dates were normalized.
func (f FeatureEntry) HasValidDates() bool {
	return f.StartDate != "" && f.ExpiryDate != ""
}

// Product groups the features granted under one part.
type Product struct {
	Part     PartInfo       `json:"part"`
	Features []FeatureEntry `json:"features"`
}

// ParsedLicense is the full output of one parse.
type ParsedLicense struct {
	Site     SiteInfo  `json:"site"`
	Products []Product `json:"products"`
}

// Part returns the first product's part, or an empty PartInfo.
func (p *ParsedLicense) Part() PartInfo {
	if p == nil || len(p.Products) == 0 {
		return PartInfo{}
	}
	return p.Products[0].Part
}

// Features returns every feature of every product in document order.
func (p *ParsedLicense) Features() []FeatureEntry {
	if p == nil {
		return nil
	}
	var all []FeatureEntry
	for _, product := range p.Products {
		all = append(all, product.Features...)
	}
	return all
}

// IsMultiProduct reports whether more than one product was detected.
func (p *ParsedLicense) IsMultiProduct() bool {
	return p != nil && len(p.Products) > 1
}

// ValidationResult is the outcome of Validate. Reasons are user facing.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Reasons []string `json:"reasons"`
}
