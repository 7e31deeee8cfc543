// Package parser turns vendor license text files into typed site, product and
// feature records and classifies feature expiry.
//
// Every function in this package is pure: no I/O, no shared state, and no reads of
// the wall clock. Callers that need "today" pass it in.
package parser

import (
	"strings"
	"time"
)

// Options tune a parse. The zero value is the strict behaviour.
type Options struct {
	// LegacyDateFallback substitutes today's date for tokens that cannot be
	// normalized, as older importers did. A DateWarning is recorded either way.
	// It has no effect unless Now is set.
	LegacyDateFallback bool
	Now                func() time.Time
}

func (o Options) legacyToday() (string, bool) {
	if !o.LegacyDateFallback || o.Now == nil {
		return "", false
	}
	return o.Now().Format(IsoDateLayout), true
}

// Parse parses a license document with default options.
func Parse(text string) (*ParsedLicense, error) {
	return ParseWithOptions(text, Options{})
}

// ParseWithOptions parses a license document. It fails only when the content block is
// missing; unmatched site, product, or feature patterns yield empty values instead.
func ParseWithOptions(text string, opts Options) (*ParsedLicense, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	body, err := ExtractContent(text)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedLicense{Site: ParseSite(text)}
	for _, segment := range SplitProducts(body) {
		parsed.Products = append(parsed.Products, Product{
			Part:     segment.Part,
			Features: ParseFeatures(segment.Text, opts),
		})
	}
	return parsed, nil
}

// Warnings collects every date warning in the parsed license, plus a product warning
// when no product metadata was found.
func (p *ParsedLicense) Warnings() []error {
	if p == nil {
		return nil
	}
	var warnings []error
	if p.Part().IsEmpty() {
		warnings = append(warnings, ErrNoRecognizedProduct)
	}
	for _, feature := range p.Features() {
		for _, w := range feature.Warnings {
			warnings = append(warnings, w)
		}
	}
	return warnings
}
