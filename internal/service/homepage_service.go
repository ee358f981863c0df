package service

import (
	"context"
	"errors"

	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/repository"
	"github.com/gtuventures/ventures-backend/pkg/cache"
	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	"github.com/gtuventures/ventures-backend/pkg/storage"
	"gorm.io/datatypes"
)

// HomepageService manages the homepage singleton sections
type HomepageService interface {
	List(ctx context.Context) ([]*domain.HomepageSection, error)
	Get(ctx context.Context, key string) (*domain.HomepageSection, error)
	// Upsert merges the submitted fields into the section, creating it when missing
	Upsert(ctx context.Context, key string, in *domain.ContentInput) (*domain.HomepageSection, error)
	// Reset empties a section back to a draft without content
	Reset(ctx context.Context, key string) error

	ListPublished(ctx context.Context) ([]*domain.HomepageSection, error)
	GetPublished(ctx context.Context, key string) (*domain.HomepageSection, error)
}

type homepageService struct {
	repo  repository.HomepageRepository
	store storage.Storage
	cache cache.Service
}

// NewHomepageService creates a new HomepageService; cache may be nil
func NewHomepageService(repo repository.HomepageRepository, store storage.Storage, c cache.Service) HomepageService {
	if c == nil {
		c = cache.NewService(nil)
	}
	return &homepageService{repo: repo, store: store, cache: c}
}

func validKey(key string) error {
	if !common.IsValidSlug(key) {
		return common.ErrInvalidInput
	}
	return nil
}

func (s *homepageService) List(ctx context.Context) ([]*domain.HomepageSection, error) {
	return s.repo.List(ctx)
}

func (s *homepageService) Get(ctx context.Context, key string) (*domain.HomepageSection, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	return s.repo.FindByKey(ctx, key)
}

func (s *homepageService) Upsert(ctx context.Context, key string, in *domain.ContentInput) (section *domain.HomepageSection, err error) {
	defer func() { observeOperation(string(domain.TypeHomepage), "upsert", err) }()

	if err := validKey(key); err != nil {
		return nil, err
	}

	section, err = s.repo.FindByKey(ctx, key)
	if errors.Is(err, common.ErrNotFound) {
		section = &domain.HomepageSection{Key: key, Status: domain.StatusDraft, Fields: datatypes.JSONMap{}}
	} else if err != nil {
		return nil, err
	}
	if section.Fields == nil {
		section.Fields = datatypes.JSONMap{}
	}

	c, err := coerceInput(domain.HomepageSchema, in, true)
	if err != nil {
		return nil, err
	}

	uploads, saved, err := storeUploads(ctx, s.store, domain.HomepageSchema, inputFiles(in))
	if err != nil {
		return nil, err
	}

	oldImage := section.Image
	for _, name := range c.Cleared {
		if name == "image" {
			section.Image = ""
			continue
		}
		delete(section.Fields, name)
	}
	for k, v := range c.Fields {
		if k == "image" {
			section.Image, _ = v.(string)
			continue
		}
		section.Fields[k] = v
	}
	if images := uploads["image"]; len(images) > 0 {
		section.Image = images[len(images)-1]
	}
	if c.Status != nil {
		section.Status = *c.Status
	}

	if err := s.repo.Save(ctx, section); err != nil {
		discardObjects(ctx, s.store, saved)
		return nil, err
	}

	discardObjects(ctx, s.store, unreferenced(append(saved, oldImage), []string{section.Image}))
	s.invalidate(ctx)
	return section, nil
}

func (s *homepageService) Reset(ctx context.Context, key string) (err error) {
	defer func() { observeOperation(string(domain.TypeHomepage), "reset", err) }()

	section, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	oldImage := section.Image

	section.Fields = datatypes.JSONMap{}
	section.Image = ""
	section.Status = domain.StatusDraft
	if err := s.repo.Save(ctx, section); err != nil {
		return err
	}

	discardObjects(ctx, s.store, []string{oldImage})
	s.invalidate(ctx)
	return nil
}

func (s *homepageService) ListPublished(ctx context.Context) ([]*domain.HomepageSection, error) {
	key := s.cache.ListKey(string(domain.TypeHomepage))
	var cached []*domain.HomepageSection
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	sections, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	published := make([]*domain.HomepageSection, 0, len(sections))
	for _, section := range sections {
		if section.Status == domain.StatusPublished {
			published = append(published, section)
		}
	}

	if err := s.cache.Set(ctx, key, published, cache.TTLHomepage); err != nil {
		pkglogger.GetLogger().Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
	return published, nil
}

func (s *homepageService) GetPublished(ctx context.Context, key string) (*domain.HomepageSection, error) {
	section, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if section.Status != domain.StatusPublished {
		return nil, common.ErrNotFound
	}
	return section, nil
}

func (s *homepageService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateType(ctx, string(domain.TypeHomepage)); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("homepage cache invalidation failed")
	}
}
