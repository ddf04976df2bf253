package scene

import "strings"

// StripPipes removes one leading and one trailing '|' from a full path name.
func StripPipes(path string) string {
	if len(path) < 2 {
		return path
	}
	path = strings.TrimPrefix(path, "|")
	return strings.TrimSuffix(path, "|")
}

var sanitizer = strings.NewReplacer(":", "_", "/", "_", " ", "_")

// Sanitize replaces namespace separators, slashes and spaces with '_'.
func Sanitize(name string) string {
	return sanitizer.Replace(name)
}
