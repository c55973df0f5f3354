// Package coords detects literal coordinate pairs in free-text search input.
package coords

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"cctvmap/pkg/model"
)

// queryRegex accepts "x, y", "x y", "(x, y)" and "x, y, z". The optional third
// numeral is matched but not captured.
var queryRegex = regexp.MustCompile(
	`^\(?\s*(-?\d+(?:\.\d+)?)[,\s]+(-?\d+(?:\.\d+)?)(?:[,\s]+-?\d+(?:\.\d+)?)?\s*\)?$`,
)

// ParseQuery reports whether text is a coordinate query and returns the point.
// Any input is valid; non-coordinate text returns false.
func ParseQuery(text string) (model.Point, bool) {
	m := queryRegex.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return model.Point{}, false
	}

	x, err := parseNum(m[1])
	if err != nil {
		return model.Point{}, false
	}
	y, err := parseNum(m[2])
	if err != nil {
		return model.Point{}, false
	}
	return model.Point{X: x, Y: y}, true
}

// parseNum parses a numeral the regex already accepted. Out-of-range values
// keep the ±Inf or 0 that ParseFloat reports, so every match yields a point.
func parseNum(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return v, nil
}
