package parser

import "strings"

// Site header strategies, most specific first.
const (
	SiteStrategyFull        = "site-full"
	SiteStrategyNumber      = "site-number"
	SiteStrategyNumberUpper = "site-number-upper"
)

// Host identifier strategies, most specific first.
const (
	HostStrategyFlexID = "hostid-flexid"
	HostStrategyHostID = "hostid"
	HostStrategyHost   = "host"
	HostStrategyServer = "server-line"
)

var siteChain = []matcher{
	newMatcher(SiteStrategyFull, `# (.+)\s+Site # :(\d+)=(.+)`),
	newMatcher(SiteStrategyNumber, `Site # :(\d+)`),
	newMatcher(SiteStrategyNumberUpper, `SITE # :(\d+)`),
}

var hostChain = []matcher{
	newMatcher(HostStrategyFlexID, `HOSTID=FLEXID=(\S+)`),
	newMatcher(HostStrategyHostID, `HOSTID=(\S+)`),
	newMatcher(HostStrategyHost, `HOST=(\S+)`),
	newMatcher(HostStrategyServer, `SERVER\s+\S+\s+([A-F0-9]{12})\s+\d+`),
}

// MatchSite runs the site header chain over the document.
func MatchSite(text string) MatchAttempt {
	return firstMatch(siteChain, text)
}

// MatchHostID runs the host identifier chain over the document.
func MatchHostID(text string) MatchAttempt {
	return firstMatch(hostChain, text)
}

// ParseSite extracts the site identity and host id from the document header. The two
// chains are independent: a missing site line does not prevent host id extraction.
func ParseSite(text string) SiteInfo {
	var site SiteInfo

	switch attempt := MatchSite(text); attempt.Strategy {
	case SiteStrategyFull:
		site.SiteName = strings.TrimSpace(attempt.Group(0))
		site.SiteNumber = attempt.Group(1)
		site.FullSiteName = strings.TrimSpace(attempt.Group(2))
	case SiteStrategyNumber, SiteStrategyNumberUpper:
		site.SiteName = UnknownSiteName
		site.SiteNumber = attempt.Group(0)
		site.FullSiteName = UnknownFullSiteName
	}

	if attempt := MatchHostID(text); attempt.Matched {
		site.HostID = attempt.Group(0)
	}

	return site
}
