package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearRe    = regexp.MustCompile(`(\d{4})`)
	integerRe = regexp.MustCompile(`(\d+)`)
)

// parseYear pulls the first four-digit year out of free text.
func parseYear(text string) *int {
	m := yearRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &year
}

// parseSeason pulls the first integer out of free text ("season two" is
// not handled; platforms deliver numerals).
func parseSeason(text string) *int {
	m := integerRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &season
}

// isTruthy reports whether a spoken slot value affirms the upcoming
// filter.
func isTruthy(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "true", "1", "upcoming":
		return true
	}
	return false
}
