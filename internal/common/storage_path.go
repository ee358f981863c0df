package common

import (
	"fmt"
	"strings"
)

// NormalizeStoragePath converts an uploaded file path into the canonical
// form stored on records: forward slashes, no duplicate separators,
// no "." segments and no leading slash. Paths escaping the root via ".."
// are rejected. Absolute URLs are returned unchanged.
func NormalizeStoragePath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p, nil
	}

	p = strings.ReplaceAll(p, "\\", "/")

	segments := strings.Split(p, "/")
	clean := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: path %q escapes storage root", ErrInvalidInput, raw)
		default:
			clean = append(clean, seg)
		}
	}
	return strings.Join(clean, "/"), nil
}
