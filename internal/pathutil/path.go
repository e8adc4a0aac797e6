// Package pathutil addresses values in nested map structures with
// dot-separated paths.
package pathutil

import "strings"

// Set sets a value at a path in a nested map structure.
// It creates intermediate maps as needed.
func Set(data map[string]any, parts []string, value any) {
	if len(parts) == 0 {
		return
	}

	if len(parts) == 1 {
		data[parts[0]] = value
		return
	}

	if _, exists := data[parts[0]]; !exists {
		data[parts[0]] = map[string]any{}
	}

	if next, ok := data[parts[0]].(map[string]any); ok {
		Set(next, parts[1:], value)
	}
}

// SplitPath splits a dot-separated path string into parts.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
