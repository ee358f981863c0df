package service

import (
	"context"
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

// Tender columns kept outside the JSON fields document
var tenderColumns = map[string]bool{"title": true, "date": true, "type": true, "file": true}

// TenderService manages tender/circular revision chains
type TenderService interface {
	CreateTender(ctx context.Context, in *domain.ContentInput) (*domain.Tender, error)
	// EditTender updates id in place, or forks a new latest version when forkAsNewVersion is set
	EditTender(ctx context.Context, id string, in *domain.ContentInput, forkAsNewVersion bool) (*domain.Tender, error)
	GetTender(ctx context.Context, id string) (*domain.Tender, error)
	ListTenders(ctx context.Context, opts domain.TenderListOptions) ([]*domain.Tender, int64, error)
	ListTenderChain(ctx context.Context, parentID string) ([]*domain.Tender, error)
	DeleteTender(ctx context.Context, id string) error
	DeleteTenderChain(ctx context.Context, parentID string) error

	ListPublishedTenders(ctx context.Context, kind domain.TenderKind, page, limit int) (*PublicTenderPage, error)
	GetPublishedTender(ctx context.Context, id string) (*domain.Tender, error)
}

// PublicTenderPage is a cached page of published latest versions
type PublicTenderPage struct {
	Items []*domain.Tender `json:"items"`
	Total int64            `json:"total"`
}

type tenderService struct {
	repo    repository.TenderRepository
	store   storage.Storage
	cache   cache.Service
	indexer ContentIndexer
	now     func() time.Time
}

// NewTenderService creates a new TenderService. cache and indexer may be nil.
func NewTenderService(repo repository.TenderRepository, store storage.Storage, c cache.Service, indexer ContentIndexer) TenderService {
	if c == nil {
		c = cache.NewService(nil)
	}
	if indexer == nil {
		indexer = (*SearchService)(nil)
	}
	return &tenderService{repo: repo, store: store, cache: c, indexer: indexer, now: time.Now}
}

// CreateTender starts a new chain: version 1, its own parent, latest
func (s *tenderService) CreateTender(ctx context.Context, in *domain.ContentInput) (t *domain.Tender, err error) {
	defer func() { observeOperation(string(domain.TypeTender), "create", err) }()

	c, err := coerceInput(domain.TenderSchema, in, false)
	if err != nil {
		return nil, err
	}

	uploads, saved, err := storeUploads(ctx, s.store, domain.TenderSchema, inputFiles(in))
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	t = &domain.Tender{
		ID:       id,
		Type:     domain.TenderKindTender,
		Status:   domain.StatusDraft,
		Fields:   datatypes.JSONMap{},
		ParentID: id,
		Version:  1,
		IsLatest: true,
	}
	s.apply(t, c, uploads)

	if err := s.repo.Create(ctx, t); err != nil {
		discardObjects(ctx, s.store, saved)
		return nil, err
	}

	discardObjects(ctx, s.store, unreferenced(saved, []string{t.File}))
	s.afterWrite(ctx, t)
	return t, nil
}

func (s *tenderService) EditTender(ctx context.Context, id string, in *domain.ContentInput, forkAsNewVersion bool) (*domain.Tender, error) {
	if forkAsNewVersion {
		return s.forkTender(ctx, id, in)
	}
	return s.updateInPlace(ctx, id, in)
}

func (s *tenderService) updateInPlace(ctx context.Context, id string, in *domain.ContentInput) (t *domain.Tender, err error) {
	defer func() { observeOperation(string(domain.TypeTender), "update", err) }()

	t, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := coerceInput(domain.TenderSchema, in, true)
	if err != nil {
		return nil, err
	}

	uploads, saved, err := storeUploads(ctx, s.store, domain.TenderSchema, inputFiles(in))
	if err != nil {
		return nil, err
	}

	oldFile := t.File
	s.apply(t, c, uploads)

	if err := s.repo.Update(ctx, t); err != nil {
		discardObjects(ctx, s.store, saved)
		return nil, err
	}

	discardObjects(ctx, s.store, unreferenced(saved, []string{t.File}))
	if oldFile != "" && oldFile != t.File {
		s.discardIfUnshared(ctx, oldFile)
	}
	s.afterWrite(ctx, t)
	return t, nil
}

// forkTender inserts version N+1 with the submitted changes applied on top of
// version N, which is demoted in the same transaction.
func (s *tenderService) forkTender(ctx context.Context, id string, in *domain.ContentInput) (next *domain.Tender, err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		tenderForksTotal.WithLabelValues(result).Inc()
	}()

	c, err := coerceInput(domain.TenderSchema, in, true)
	if err != nil {
		return nil, err
	}

	uploads, saved, err := storeUploads(ctx, s.store, domain.TenderSchema, inputFiles(in))
	if err != nil {
		return nil, err
	}

	next, prev, err := s.repo.Fork(ctx, id, func(old *domain.Tender) (*domain.Tender, error) {
		snapshot, err := old.Snapshot()
		if err != nil {
			return nil, err
		}
		n := &domain.Tender{
			ID:           uuid.NewString(),
			Type:         old.Type,
			Title:        old.Title,
			Date:         old.Date,
			Status:       old.Status,
			PublishedAt:  old.PublishedAt,
			Fields:       datatypes.JSONMap(maps.Clone(map[string]any(old.Fields))),
			File:         old.File,
			PreviousData: snapshot,
		}
		if n.Fields == nil {
			n.Fields = datatypes.JSONMap{}
		}
		s.apply(n, c, uploads)
		return n, nil
	})
	if err != nil {
		discardObjects(ctx, s.store, saved)
		return nil, err
	}

	pkglogger.GetLogger().Info().
		Str("parent_id", next.ParentID).
		Int("version", next.Version).
		Str("previous_id", prev.ID).
		Msg("tender forked")

	discardObjects(ctx, s.store, unreferenced(saved, []string{next.File}))
	s.indexer.RemoveTender(ctx, prev.ID)
	s.afterWrite(ctx, next)
	return next, nil
}

// apply copies coerced values and the uploaded file onto t
func (s *tenderService) apply(t *domain.Tender, c *coerced, uploads map[string][]string) {
	if t.Fields == nil {
		t.Fields = datatypes.JSONMap{}
	}
	for _, name := range c.Cleared {
		switch name {
		case "date":
			t.Date = nil
		case "file":
			t.File = ""
		default:
			delete(t.Fields, name)
		}
	}
	for name, value := range c.Fields {
		if !tenderColumns[name] {
			t.Fields[name] = value
		}
	}
	if v := stringField(c.Fields, "title"); v != "" {
		t.Title = v
	}
	if v := stringField(c.Fields, "type"); v != "" {
		t.Type = domain.TenderKind(v)
	}
	if v := stringField(c.Fields, "date"); v != "" {
		if d, err := time.Parse(time.RFC3339, v); err == nil {
			t.Date = &d
		}
	}
	if v := stringField(c.Fields, "file"); v != "" {
		t.File = v
	}
	if files := uploads["file"]; len(files) > 0 {
		t.File = files[len(files)-1]
	}
	prevStatus := t.Status
	if c.Status != nil {
		t.Status = *c.Status
	}
	t.PublishedAt = publicationTime(prevStatus, t.Status, t.PublishedAt, c.PublishedAt, s.now())
}

func (s *tenderService) GetTender(ctx context.Context, id string) (*domain.Tender, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *tenderService) ListTenders(ctx context.Context, opts domain.TenderListOptions) ([]*domain.Tender, int64, error) {
	return s.repo.List(ctx, opts)
}

// ListTenderChain returns a chain highest version first; an empty chain is NotFound
func (s *tenderService) ListTenderChain(ctx context.Context, parentID string) ([]*domain.Tender, error) {
	chain, err := s.repo.ListChain(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, common.ErrNotFound
	}
	return chain, nil
}

// DeleteTender removes one version. When it was the latest, the highest
// remaining version becomes latest. Its file goes only if no sibling uses it.
func (s *tenderService) DeleteTender(ctx context.Context, id string) (err error) {
	defer func() { observeOperation(string(domain.TypeTender), "delete", err) }()

	deleted, promoted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if deleted.File != "" {
		s.discardIfUnshared(ctx, deleted.File)
	}
	s.invalidate(ctx)
	s.indexer.RemoveTender(ctx, deleted.ID)
	if promoted != nil {
		s.indexer.IndexTender(ctx, promoted)
	}
	return nil
}

// DeleteTenderChain removes every version of a chain and their files
func (s *tenderService) DeleteTenderChain(ctx context.Context, parentID string) (err error) {
	defer func() { observeOperation(string(domain.TypeTender), "delete_chain", err) }()

	versions, err := s.repo.DeleteChain(ctx, parentID)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, v := range versions {
		s.indexer.RemoveTender(ctx, v.ID)
		if v.File == "" || seen[v.File] {
			continue
		}
		seen[v.File] = true
		s.discardIfUnshared(ctx, v.File)
	}
	s.invalidate(ctx)
	return nil
}

func (s *tenderService) ListPublishedTenders(ctx context.Context, kind domain.TenderKind, page, limit int) (*PublicTenderPage, error) {
	opts := domain.TenderListOptions{
		ListOptions: domain.ListOptions{Status: domain.StatusPublished, Page: page, Limit: limit},
		Kind:        kind,
	}
	opts.Normalize()

	key := s.cache.ListKey(string(domain.TypeTender), kind, opts.Page, opts.Limit)
	var cached PublicTenderPage
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	tenders, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	out := &PublicTenderPage{Items: tenders, Total: total}
	if err := s.cache.Set(ctx, key, out, cache.TTLPublicList); err != nil {
		pkglogger.GetLogger().Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
	return out, nil
}

// GetPublishedTender only exposes the published latest version of a chain
func (s *tenderService) GetPublishedTender(ctx context.Context, id string) (*domain.Tender, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsLatest || t.Status != domain.StatusPublished {
		return nil, common.ErrNotFound
	}
	return t, nil
}

func (s *tenderService) discardIfUnshared(ctx context.Context, file string) {
	shared, err := s.repo.FileReferenced(ctx, file)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("path", file).Msg("failed to check tender file references")
		return
	}
	if !shared {
		discardObjects(ctx, s.store, []string{file})
	}
}

func (s *tenderService) afterWrite(ctx context.Context, t *domain.Tender) {
	s.invalidate(ctx)
	s.indexer.IndexTender(ctx, t)
}

func (s *tenderService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateType(ctx, string(domain.TypeTender)); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("tender cache invalidation failed")
	}
}
