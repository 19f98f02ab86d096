// Package version exposes the release version baked into the binary.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionContent string

// Get returns the release version with surrounding whitespace trimmed.
func Get() string {
	return strings.TrimSpace(versionContent)
}
