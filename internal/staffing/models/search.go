package models

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matches reports whether any of fields contains filter, ignoring case.
// An empty filter matches everything.
func Matches(filter string, fields ...string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	// Casers keep state and must not be shared between goroutines.
	fold := cases.Fold()
	needle := fold.String(filter)
	for _, f := range fields {
		if strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}
