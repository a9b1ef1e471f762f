package resolver

import (
	"path/filepath"
	"strings"
)

// toSlash rewrites both separator styles to "/", whatever the platform.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// normalize returns p with platform separators, cleaned. Empty stays empty.
func normalize(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(filepath.FromSlash(toSlash(p)))
}

// hasSegment reports whether any segment of the slash path p equals name.
func hasSegment(p, name string) bool {
	for _, segment := range strings.Split(p, "/") {
		if segment == name {
			return true
		}
	}
	return false
}
