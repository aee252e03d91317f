package state

import (
	"regexp"
	"strings"
)

// pathRE is the restricted identifier grammar for paths: dot-separated
// identifiers, each starting with a letter, underscore, or dollar sign.
// Numeric segments are deliberately excluded; sequences are addressed by
// their own path, never per index.
var pathRE = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$]*(\.[a-zA-Z_$][a-zA-Z0-9_$]*)*$`)

// ValidPath reports whether p is a well-formed dotted path.
func ValidPath(p string) bool {
	return pathRE.MatchString(p)
}

// splitPath splits a dotted path into its segments.
func splitPath(p string) []string {
	return strings.Split(p, ".")
}

// joinPath appends a key to a path prefix. An empty prefix denotes the root.
func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// ancestors returns the strict ancestors of p, nearest first, computed by
// trimming trailing segments. ancestors("a.b.c") is ["a.b", "a"].
func ancestors(p string) []string {
	var out []string
	for {
		i := strings.LastIndexByte(p, '.')
		if i < 0 {
			return out
		}
		p = p[:i]
		out = append(out, p)
	}
}
