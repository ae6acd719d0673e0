// Package utils holds tiny helpers with no domain knowledge.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 int, falling back to def when s is
// empty or not a whole number. Query parameters like page and page_size
// arrive as strings and a bad value should select the default, not fail
// the request.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
