package catalog

import (
	"regexp"
	"strings"
)

// The catalogue's top-level grouping is a closed set: a program is either the
// reserved "basics" shelf or a tiered program name. Everything after the
// prefix is deliberately unconstrained.
const basicsProgram = "basics"

var programPrefixes = []string{"diploma", "bachelors"}

// ValidProgram reports whether a program value is an accepted classification.
// Matching is case-insensitive.
func ValidProgram(program string) bool {
	p := strings.ToLower(program)
	if p == basicsProgram {
		return true
	}
	for _, prefix := range programPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeFilename makes a human-supplied filename safe as a path component by
// collapsing whitespace runs to a single underscore. Collision avoidance comes
// from the timestamp prefixed onto the storage key, not from this.
func SanitizeFilename(name string) string {
	return whitespaceRun.ReplaceAllString(name, "_")
}
