package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(root, "/uploads")
	require.NoError(t, err)

	p, err := s.Save(ctx, "news/2026/10/15/a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "news/2026/10/15/a.txt", p)

	data, err := os.ReadFile(filepath.Join(root, "news", "2026", "10", "15", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "/uploads/news/2026/10/15/a.txt", s.URL(p))

	require.NoError(t, s.Delete(ctx, p))
	_, err = os.Stat(filepath.Join(root, "news", "2026", "10", "15", "a.txt"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, p))
}

func TestLocalStorage_RejectsEscapes(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "../outside.txt", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.ErrorIs(t, s.Delete(context.Background(), "a/../../b"), ErrInvalidKey)
}

func TestLocalStorage_URLKeepsAbsoluteLinks(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "https://ventures.example.org/uploads/")
	require.NoError(t, err)

	assert.Equal(t, "https://ventures.example.org/uploads/a/b.png", s.URL("a/b.png"))
	assert.Equal(t, "https://cdn.example.org/x.png", s.URL("https://cdn.example.org/x.png"))
}

func TestGenerateKey(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	key := generateKey(now, "/news/", `C:\Users\ops\My Photo.JPG`)

	assert.True(t, strings.HasPrefix(key, "news/2026/03/07/my-photo_"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)

	a := generateKey(now, "gallery", "x.png")
	b := generateKey(now, "gallery", "x.png")
	assert.NotEqual(t, a, b)

	assert.Contains(t, generateKey(now, "reports", ".pdf"), "/file_")
}
