// Package machinename turns human labels into identifier-safe tokens.
package machinename

import (
	"regexp"
	"strings"
)

var (
	validPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	separatorRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// FromLabel lower-cases the label, collapses every run of characters outside
// [a-z0-9] into a single underscore and trims underscores from both ends.
// A label made only of symbols yields an empty string, which Valid rejects.
func FromLabel(label string) string {
	name := separatorRun.ReplaceAllString(strings.ToLower(label), "_")
	return strings.Trim(name, "_")
}

// Valid reports whether id is a non-empty machine name.
func Valid(id string) bool {
	return validPattern.MatchString(id)
}
