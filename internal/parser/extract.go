package parser

import "strings"

const (
	contentStartMarker = "############################# License Content #############################"
	contentEndMarker   = "######################### End of License Content ##########################"

	looseStartMarker = "License Content"
	looseEndMarker   = "End of License Content"
)

// ExtractContent returns the license body between the content markers, excluding the
// markers themselves. The exact marker lines are tried first, then the loose phrases.
func ExtractContent(text string) (string, error) {
	if body, ok := between(text, contentStartMarker, contentEndMarker); ok {
		return body, nil
	}
	if body, ok := between(text, looseStartMarker, looseEndMarker); ok {
		return body, nil
	}
	return "", ErrMissingContentBlock
}

func between(text, start, end string) (string, bool) {
	startIdx := strings.Index(text, start)
	if startIdx == -1 {
		return "", false
	}
	from := startIdx + len(start)

	// "End of License Content" contains "License Content", so the end marker is
	// searched after the start marker.
	endIdx := strings.Index(text[from:], end)
	if endIdx == -1 {
		return "", false
	}
	return text[from : from+endIdx], true
}
