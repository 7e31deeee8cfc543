package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Part strategies, most specific first.
const (
	PartStrategyLine    = "part-line"
	PartStrategyInline  = "part-inline"
	PartStrategyLabeled = "part-labeled"
)

var (
	productLinePattern = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*(\d+)[ \t]+(.+?)[ \t]+(\d+)[ \t\r]*$`)

	partChain = []matcher{
		{name: PartStrategyLine, pattern: productLinePattern},
		newMatcher(PartStrategyInline, `# (\d+)\s+(.+?)\s+(\d+)`),
	}

	partNumberLabel = newMatcher(PartStrategyLabeled, `(?i)Part Number[:\s]*(\d+)`)
	productLabel    = newMatcher(PartStrategyLabeled, `(?i)Product[:\s]*(.+)`)
)

// MatchPart runs the product indicator chain over a body. The labeled fallback is not
// part of the chain because it combines two independent lines.
func MatchPart(body string) MatchAttempt {
	return firstMatch(partChain, featureLinePattern.ReplaceAllString(body, ""))
}

// ParsePart extracts a single product identity. An empty PartInfo means the body has no
// product metadata; it is not an error.
func ParsePart(body string) PartInfo {
	if attempt := MatchPart(body); attempt.Matched {
		return PartInfo{
			PartNumber: attempt.Group(0),
			PartName:   strings.TrimSpace(attempt.Group(1)),
			Quantity:   parseQuantity(attempt.Group(2)),
		}
	}

	number := partNumberLabel.attempt(body)
	name := productLabel.attempt(body)
	if !number.Matched && !name.Matched {
		return PartInfo{}
	}
	return PartInfo{
		PartNumber: number.Group(0),
		PartName:   strings.TrimSpace(name.Group(0)),
		Quantity:   1,
	}
}

func parseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Segment is the slice of a body that belongs to one product indicator line.
type Segment struct {
	Part PartInfo
	Text string
}

// SplitProducts cuts a body at every product indicator line. Text preceding the first
// indicator belongs to the first segment. A body with no indicator yields one segment
// covering the whole body, with the part taken from ParsePart.
func SplitProducts(body string) []Segment {
	locs := indicatorLines(body)
	if len(locs) == 0 {
		return []Segment{{Part: ParsePart(body), Text: body}}
	}

	segments := make([]Segment, 0, len(locs))
	for i, loc := range locs {
		start := loc[0]
		if i == 0 {
			start = 0
		}
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, Segment{
			Part: PartInfo{
				PartNumber: body[loc[2]:loc[3]],
				PartName:   strings.TrimSpace(body[loc[4]:loc[5]]),
				Quantity:   parseQuantity(body[loc[6]:loc[7]]),
			},
			Text: body[start:end],
		})
	}
	return segments
}

// indicatorLines locates product indicator lines. A feature line with a numeric name
// has the same shape and is skipped.
func indicatorLines(body string) [][]int {
	var locs [][]int
	for _, loc := range productLinePattern.FindAllStringSubmatchIndex(body, -1) {
		if featureLinePattern.MatchString(body[loc[0]:loc[1]]) {
			continue
		}
		locs = append(locs, loc)
	}
	return locs
}
