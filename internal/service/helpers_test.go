package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/repository"
	"github.com/gtuventures/ventures-backend/internal/testutil"
	"github.com/gtuventures/ventures-backend/pkg/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	store   *storage.LocalStorage
	content ContentService
	tenders TenderService
	home    HomepageService
	search  *SearchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	contentRepo := repository.NewContentRepository(db)
	tenderRepo := repository.NewTenderRepository(db)
	search := NewSearchService(nil, "", contentRepo, tenderRepo)

	return &fixture{
		db:      db,
		store:   store,
		content: NewContentService(contentRepo, store, nil, search),
		tenders: NewTenderService(tenderRepo, store, nil, search),
		home:    NewHomepageService(repository.NewHomepageRepository(db), store, nil),
		search:  search,
	}
}

func (f *fixture) exists(p string) bool {
	_, err := os.Stat(filepath.Join(f.store.Root(), filepath.FromSlash(p)))
	return err == nil
}

type readSeekNopCloser struct {
	*strings.Reader
}

func (readSeekNopCloser) Close() error { return nil }

func upload(field, name, body string) domain.UploadedFile {
	return domain.UploadedFile{
		Field:       field,
		Filename:    name,
		ContentType: "application/octet-stream",
		Size:        int64(len(body)),
		Open: func() (domain.ReadSeekCloser, error) {
			return readSeekNopCloser{strings.NewReader(body)}, nil
		},
	}
}

// validValues builds a submission that satisfies every required field of schema
func validValues(schema *domain.Schema, slug string) map[string]any {
	values := map[string]any{}
	for _, f := range schema.Fields {
		if !f.Required {
			continue
		}
		switch f.Kind {
		case domain.KindSlug:
			values[f.Name] = slug
		case domain.KindText:
			values[f.Name] = "Some longer text for " + slug
		case domain.KindNumber:
			values[f.Name] = "2025"
		case domain.KindDate:
			values[f.Name] = "2026-02-01"
		default:
			values[f.Name] = "Value " + slug
		}
	}
	return values
}

func input(values map[string]any, files ...domain.UploadedFile) *domain.ContentInput {
	return &domain.ContentInput{Values: values, Files: files}
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) IndexRecord(ctx context.Context, schema *domain.Schema, rec *domain.Record) {
	m.Called(ctx, schema, rec)
}

func (m *mockIndexer) RemoveRecord(ctx context.Context, contentType domain.ContentType, id string) {
	m.Called(ctx, contentType, id)
}

func (m *mockIndexer) IndexTender(ctx context.Context, t *domain.Tender) {
	m.Called(ctx, t)
}

func (m *mockIndexer) RemoveTender(ctx context.Context, id string) {
	m.Called(ctx, id)
}
