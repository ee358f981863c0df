package service

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/repository"
	"github.com/gtuventures/ventures-backend/pkg/cache"
	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	"github.com/gtuventures/ventures-backend/pkg/storage"
	"gorm.io/datatypes"
)

// PublicPage is a cached page of published records
type PublicPage struct {
	Items []*domain.Record `json:"items"`
	Total int64            `json:"total"`
}

// ContentService is the generic CRUD engine driven by schema descriptors
type ContentService interface {
	Schema(contentType string) (*domain.Schema, error)

	Create(ctx context.Context, contentType string, in *domain.ContentInput) (*domain.Record, error)
	List(ctx context.Context, contentType string, opts domain.ListOptions) ([]*domain.Record, int64, error)
	Get(ctx context.Context, contentType, id string) (*domain.Record, error)
	Update(ctx context.Context, contentType, id string, in *domain.ContentInput) (*domain.Record, error)
	Delete(ctx context.Context, contentType, id string) error

	// Public reads only ever return published records
	ListPublished(ctx context.Context, contentType string, page, limit int) (*PublicPage, error)
	GetPublished(ctx context.Context, contentType, idOrSlug string) (*domain.Record, error)
}

type contentService struct {
	repo    repository.ContentRepository
	store   storage.Storage
	cache   cache.Service
	indexer ContentIndexer
	now     func() time.Time
}

// NewContentService creates a new ContentService. cache and indexer may be nil.
func NewContentService(repo repository.ContentRepository, store storage.Storage, c cache.Service, indexer ContentIndexer) ContentService {
	if c == nil {
		c = cache.NewService(nil)
	}
	if indexer == nil {
		indexer = (*SearchService)(nil)
	}
	return &contentService{repo: repo, store: store, cache: c, indexer: indexer, now: time.Now}
}

func (s *contentService) Schema(contentType string) (*domain.Schema, error) {
	schema, ok := domain.LookupSchema(contentType)
	if !ok {
		return nil, common.ErrUnknownContentType
	}
	return schema, nil
}

// Create validates the submission, stores its uploads and inserts the record
func (s *contentService) Create(ctx context.Context, contentType string, in *domain.ContentInput) (rec *domain.Record, err error) {
	schema, err := s.Schema(contentType)
	if err != nil {
		return nil, err
	}
	defer func() { observeOperation(string(schema.Type), "create", err) }()

	c, err := coerceInput(schema, in, false)
	if err != nil {
		return nil, err
	}

	if schema.SlugUnique && c.Slug != nil {
		exists, err := s.repo.ExistsBySlug(ctx, schema.Table, *c.Slug, "")
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.ErrDuplicateSlug
		}
	}

	uploads, saved, err := storeUploads(ctx, s.store, schema, inputFiles(in))
	if err != nil {
		return nil, err
	}
	fields := c.Fields
	applyFiles(schema, fields, uploads, false, nil)

	rec = &domain.Record{
		ID:     uuid.NewString(),
		Slug:   c.Slug,
		Status: domain.StatusDraft,
		Fields: datatypes.JSONMap(fields),
	}
	if c.Status != nil {
		rec.Status = *c.Status
	}
	rec.PublishedAt = publicationTime("", rec.Status, nil, c.PublishedAt, s.now())

	if err := s.repo.Create(ctx, schema.Table, rec); err != nil {
		discardObjects(ctx, s.store, saved)
		return nil, err
	}

	discardObjects(ctx, s.store, unreferenced(saved, referencedFiles(schema, rec.Fields)))
	s.afterWrite(ctx, schema, rec)
	return rec, nil
}

func (s *contentService) List(ctx context.Context, contentType string, opts domain.ListOptions) ([]*domain.Record, int64, error) {
	schema, err := s.Schema(contentType)
	if err != nil {
		return nil, 0, err
	}
	opts.SearchFields = schema.SearchFields()
	return s.repo.List(ctx, schema.Table, opts)
}

func (s *contentService) Get(ctx context.Context, contentType, id string) (*domain.Record, error) {
	schema, err := s.Schema(contentType)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, schema.Table, id)
}

// Update applies a partial submission: fields that were not submitted keep their values
func (s *contentService) Update(ctx context.Context, contentType, id string, in *domain.ContentInput) (rec *domain.Record, err error) {
	schema, err := s.Schema(contentType)
	if err != nil {
		return nil, err
	}
	defer func() { observeOperation(string(schema.Type), "update", err) }()

	rec, err = s.repo.FindByID(ctx, schema.Table, id)
	if err != nil {
		return nil, err
	}

	c, err := coerceInput(schema, in, true)
	if err != nil {
		return nil, err
	}

	if c.Slug != nil && *c.Slug != rec.SlugValue() && schema.SlugUnique {
		exists, err := s.repo.ExistsBySlug(ctx, schema.Table, *c.Slug, rec.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.ErrDuplicateSlug
		}
	}

	uploads, saved, err := storeUploads(ctx, s.store, schema, inputFiles(in))
	if err != nil {
		return nil, err
	}

	before := referencedFiles(schema, rec.Fields)

	fields := maps.Clone(map[string]any(rec.Fields))
	if fields == nil {
		fields = map[string]any{}
	}
	for _, name := range c.Cleared {
		delete(fields, name)
	}
	maps.Copy(fields, c.Fields)

	replace, remove := false, []string(nil)
	if in != nil {
		replace, remove = in.ReplaceImages, in.RemoveFiles
	}
	applyFiles(schema, fields, uploads, replace, remove)

	if c.Slug != nil {
		rec.Slug = c.Slug
	}
	prevStatus := rec.Status
	if c.Status != nil {
		rec.Status = *c.Status
	}
	rec.PublishedAt = publicationTime(prevStatus, rec.Status, rec.PublishedAt, c.PublishedAt, s.now())
	rec.Fields = datatypes.JSONMap(fields)

	if err := s.repo.Update(ctx, schema.Table, rec); err != nil {
		discardObjects(ctx, s.store, saved)
		return nil, err
	}

	discardObjects(ctx, s.store, unreferenced(append(before, saved...), referencedFiles(schema, rec.Fields)))
	s.afterWrite(ctx, schema, rec)
	return rec, nil
}

// Delete removes the record, then every object it referenced
func (s *contentService) Delete(ctx context.Context, contentType, id string) (err error) {
	schema, err := s.Schema(contentType)
	if err != nil {
		return err
	}
	defer func() { observeOperation(string(schema.Type), "delete", err) }()

	rec, err := s.repo.FindByID(ctx, schema.Table, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, schema.Table, id); err != nil {
		return err
	}

	discardObjects(ctx, s.store, referencedFiles(schema, rec.Fields))
	s.invalidate(ctx, schema.Type)
	s.indexer.RemoveRecord(ctx, schema.Type, id)
	return nil
}

func (s *contentService) ListPublished(ctx context.Context, contentType string, page, limit int) (*PublicPage, error) {
	schema, err := s.Schema(contentType)
	if err != nil {
		return nil, err
	}
	opts := domain.ListOptions{Status: domain.StatusPublished, Page: page, Limit: limit}
	opts.Normalize()

	key := s.cache.ListKey(string(schema.Type), opts.Page, opts.Limit)
	var cached PublicPage
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	records, total, err := s.repo.List(ctx, schema.Table, opts)
	if err != nil {
		return nil, err
	}
	out := &PublicPage{Items: records, Total: total}
	if err := s.cache.Set(ctx, key, out, cache.TTLPublicList); err != nil {
		pkglogger.GetLogger().Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
	return out, nil
}

// GetPublished resolves an ID, or a slug for types that have one
func (s *contentService) GetPublished(ctx context.Context, contentType, idOrSlug string) (*domain.Record, error) {
	schema, err := s.Schema(contentType)
	if err != nil {
		return nil, err
	}

	key := s.cache.ItemKey(string(schema.Type), idOrSlug)
	var cached domain.Record
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	rec, err := s.repo.FindByID(ctx, schema.Table, idOrSlug)
	if errors.Is(err, common.ErrNotFound) && schema.HasSlug() {
		rec, err = s.repo.FindBySlug(ctx, schema.Table, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if !rec.IsPublished() {
		return nil, common.ErrNotFound
	}

	if err := s.cache.Set(ctx, key, rec, cache.TTLPublicItem); err != nil {
		pkglogger.GetLogger().Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
	return rec, nil
}

// publicationTime resolves published_at after a write. Published records
// always carry one. A record moved back to draft keeps only a submitted future
// time, otherwise the scheduler would publish it again on its next sweep.
func publicationTime(prev, next domain.Status, current, submitted *time.Time, now time.Time) *time.Time {
	at := current
	if submitted != nil {
		at = submitted
	}
	switch {
	case next == domain.StatusPublished && at == nil:
		return &now
	case next == domain.StatusDraft && (prev == domain.StatusPublished || prev == domain.StatusArchived):
		if submitted != nil && submitted.After(now) {
			return submitted
		}
		return nil
	}
	return at
}

func (s *contentService) afterWrite(ctx context.Context, schema *domain.Schema, rec *domain.Record) {
	s.invalidate(ctx, schema.Type)
	s.indexer.IndexRecord(ctx, schema, rec)
}

func (s *contentService) invalidate(ctx context.Context, contentType domain.ContentType) {
	if err := s.cache.InvalidateType(ctx, string(contentType)); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("type", string(contentType)).Msg("cache invalidation failed")
	}
}

func inputFiles(in *domain.ContentInput) []domain.UploadedFile {
	if in == nil {
		return nil
	}
	return in.Files
}

// unreferenced returns the paths of before that are absent from after
func unreferenced(before, after []string) []string {
	keep := make(map[string]bool, len(after))
	for _, p := range after {
		keep[p] = true
	}
	var out []string
	for _, p := range before {
		if !keep[p] {
			out = append(out, p)
		}
	}
	return out
}
