package parser

import (
	"regexp"
	"strings"
)

// MinDocumentLength is the shortest content accepted as a license file.
const MinDocumentLength = 50

const (
	ReasonEmpty     = "file is empty"
	ReasonNoSignals = "not a recognizable license file: no license related information found"
	ReasonTooShort  = "file is too short to be a valid license file"
)

var (
	dateLikePattern = regexp.MustCompile(`\d{2}-\w{3}-\d{4}|\d{4}-\d{2}-\d{2}`)
	digitRunPattern = regexp.MustCompile(`\d{10}`)
	siteKeywords    = []string{"Site", "SITE", "site"}
	hostKeywords    = []string{"HOSTID", "hostid", "Host", "HOST", "SERVER"}
	licenseKeywords = []string{"License", "license", "INCREMENT", "increment", "FEATURE", "feature"}
	vendorKeywords  = []string{"Siemens", "siemens", "SIMATIC", "simatic"}
)

// Validate applies a deliberately lenient check: any one weak signal is enough. It
// rejects empty input, text with no signal at all, and text under MinDocumentLength.
func Validate(text string) ValidationResult {
	if strings.TrimSpace(text) == "" {
		return ValidationResult{Reasons: []string{ReasonEmpty}}
	}

	reasons := []string{}
	if !hasAnySignal(text) {
		reasons = append(reasons, ReasonNoSignals)
	}
	if len(text) < MinDocumentLength {
		reasons = append(reasons, ReasonTooShort)
	}

	return ValidationResult{IsValid: len(reasons) == 0, Reasons: reasons}
}

func hasAnySignal(text string) bool {
	return containsAny(text, siteKeywords) ||
		containsAny(text, hostKeywords) ||
		containsAny(text, licenseKeywords) ||
		containsAny(text, vendorKeywords) ||
		dateLikePattern.MatchString(text) ||
		digitRunPattern.MatchString(text)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
