package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that would escape the storage root
var ErrInvalidKey = errors.New("invalid storage key")

// Storage persists uploaded objects. Paths returned by Save are the
// canonical references kept on records and later passed to Delete.
type Storage interface {
	Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// GenerateKey creates a unique storage key with a dated prefix
func GenerateKey(prefix, filename string) string {
	return generateKey(time.Now(), prefix, filename)
}

func generateKey(now time.Time, prefix, filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(filename))
	base := sanitizeName(strings.TrimSuffix(filename, path.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s/%d/%02d/%02d/%s_%s%s",
		strings.Trim(prefix, "/"), now.Year(), now.Month(), now.Day(),
		base, uuid.NewString()[:8], ext)
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	if b.Len() > 64 {
		return b.String()[:64]
	}
	return b.String()
}

func joinURL(base, p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}
