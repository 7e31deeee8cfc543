package parser

import "regexp"

// MatchAttempt is the tagged result of one strategy in an ordered fallback chain.
type MatchAttempt struct {
	Strategy string
	Matched  bool
	// Groups holds the capture groups, without the full match.
	Groups []string
}

// Group returns capture i, or "" when it does not exist.
func (a MatchAttempt) Group(i int) string {
	if i < 0 || i >= len(a.Groups) {
		return ""
	}
	return a.Groups[i]
}

type matcher struct {
	name    string
	pattern *regexp.Regexp
}

func newMatcher(name, expr string) matcher {
	return matcher{name: name, pattern: regexp.MustCompile(expr)}
}

func (m matcher) attempt(text string) MatchAttempt {
	sub := m.pattern.FindStringSubmatch(text)
	if sub == nil {
		return MatchAttempt{Strategy: m.name}
	}
	return MatchAttempt{Strategy: m.name, Matched: true, Groups: sub[1:]}
}

// firstMatch tries each matcher in order and returns the first success. When nothing
// matches the returned attempt has Matched=false and an empty Strategy.
func firstMatch(chain []matcher, text string) MatchAttempt {
	for _, m := range chain {
		if a := m.attempt(text); a.Matched {
			return a
		}
	}
	return MatchAttempt{}
}
