package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"gorm.io/gorm"
)

// ForkBuilder produces the next version from the current latest one.
// It runs inside the fork transaction before old is demoted.
type ForkBuilder func(old *domain.Tender) (*domain.Tender, error)

// TenderRepository stores tender and circular versions
type TenderRepository interface {
	Create(ctx context.Context, t *domain.Tender) error
	FindByID(ctx context.Context, id string) (*domain.Tender, error)
	Update(ctx context.Context, t *domain.Tender) error
	List(ctx context.Context, opts domain.TenderListOptions) ([]*domain.Tender, int64, error)
	ListChain(ctx context.Context, parentID string) ([]*domain.Tender, error)
	ListPublishedLatest(ctx context.Context) ([]*domain.Tender, error)

	// Fork demotes the latest version id and inserts its successor atomically
	Fork(ctx context.Context, id string, build ForkBuilder) (next *domain.Tender, prev *domain.Tender, err error)
	// Delete removes one version and promotes the highest remaining one when it was latest
	Delete(ctx context.Context, id string) (deleted *domain.Tender, promoted *domain.Tender, err error)
	// DeleteChain removes every version sharing parentID
	DeleteChain(ctx context.Context, parentID string) ([]*domain.Tender, error)

	FileReferenced(ctx context.Context, file string, excludeIDs ...string) (bool, error)
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

type tenderRepository struct {
	db *gorm.DB
}

// NewTenderRepository creates a new TenderRepository
func NewTenderRepository(db *gorm.DB) TenderRepository {
	return &tenderRepository{db: db}
}

// Create inserts the first version of a chain; ParentID must already be set
func (r *tenderRepository) Create(ctx context.Context, t *domain.Tender) error {
	if t.ParentID == "" {
		t.ParentID = t.ID
	}
	err := r.db.WithContext(ctx).Create(t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrVersionConflict
	}
	return err
}

// FindByID retrieves a version by ID
func (r *tenderRepository) FindByID(ctx context.Context, id string) (*domain.Tender, error) {
	var t domain.Tender
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

// Update rewrites the mutable columns in place; chain columns are never touched here
func (r *tenderRepository) Update(ctx context.Context, t *domain.Tender) error {
	t.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&domain.Tender{}).
		Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"type":         t.Type,
			"title":        t.Title,
			"date":         t.Date,
			"status":       t.Status,
			"published_at": t.PublishedAt,
			"fields":       t.Fields,
			"file":         t.File,
			"updated_at":   t.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// List returns latest versions by default; AllVersions includes history
func (r *tenderRepository) List(ctx context.Context, opts domain.TenderListOptions) ([]*domain.Tender, int64, error) {
	opts.Normalize()

	query := r.db.WithContext(ctx).Model(&domain.Tender{})
	if !opts.AllVersions {
		query = query.Where("is_latest = ?", true)
	}
	if opts.Kind != "" {
		query = query.Where("type = ?", opts.Kind)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if q := strings.TrimSpace(opts.Search); q != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tenders []*domain.Tender
	err := query.
		Order("created_at DESC, version DESC").
		Limit(opts.Limit).
		Offset(opts.Offset()).
		Find(&tenders).Error
	if err != nil {
		return nil, 0, err
	}
	return tenders, total, nil
}

// ListChain returns every version of a chain, highest version first
func (r *tenderRepository) ListChain(ctx context.Context, parentID string) ([]*domain.Tender, error) {
	var tenders []*domain.Tender
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("version DESC").
		Find(&tenders).Error
	return tenders, err
}

// ListPublishedLatest feeds the search index
func (r *tenderRepository) ListPublishedLatest(ctx context.Context) ([]*domain.Tender, error) {
	var tenders []*domain.Tender
	err := r.db.WithContext(ctx).
		Where("is_latest = ? AND status = ?", true, domain.StatusPublished).
		Order("created_at DESC").
		Find(&tenders).Error
	return tenders, err
}

func (r *tenderRepository) Fork(ctx context.Context, id string, build ForkBuilder) (*domain.Tender, *domain.Tender, error) {
	var next, prev *domain.Tender

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old domain.Tender
		if err := tx.Where("id = ?", id).First(&old).Error; err != nil {
			return translateError(err)
		}
		if !old.IsLatest {
			return common.ErrNotLatestVersion
		}

		n, err := build(&old)
		if err != nil {
			return err
		}

		// guarded demotion: a concurrent fork that got here first leaves zero rows
		demoted := tx.Model(&domain.Tender{}).
			Where("id = ? AND is_latest = ?", old.ID, true).
			Updates(map[string]interface{}{"is_latest": false, "updated_at": time.Now()})
		if demoted.Error != nil {
			return demoted.Error
		}
		if demoted.RowsAffected == 0 {
			return common.ErrVersionConflict
		}

		n.ParentID = old.ParentID
		n.Version = old.Version + 1
		n.IsLatest = true
		if err := tx.Create(n).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return common.ErrVersionConflict
			}
			return err
		}

		old.IsLatest = false
		next, prev = n, &old
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return next, prev, nil
}

func (r *tenderRepository) Delete(ctx context.Context, id string) (*domain.Tender, *domain.Tender, error) {
	var deleted, promoted *domain.Tender

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.Tender
		if err := tx.Where("id = ?", id).First(&t).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Tender{}).Error; err != nil {
			return err
		}
		deleted = &t

		if !t.IsLatest {
			return nil
		}

		var next domain.Tender
		err := tx.Where("parent_id = ?", t.ParentID).Order("version DESC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&domain.Tender{}).
			Where("id = ?", next.ID).
			Updates(map[string]interface{}{"is_latest": true, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		next.IsLatest = true
		promoted = &next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return deleted, promoted, nil
}

func (r *tenderRepository) DeleteChain(ctx context.Context, parentID string) ([]*domain.Tender, error) {
	var versions []*domain.Tender

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", parentID).Order("version DESC").Find(&versions).Error; err != nil {
			return err
		}
		if len(versions) == 0 {
			return common.ErrNotFound
		}
		return tx.Where("parent_id = ?", parentID).Delete(&domain.Tender{}).Error
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// FileReferenced reports whether any version other than excludeIDs points at file
func (r *tenderRepository) FileReferenced(ctx context.Context, file string, excludeIDs ...string) (bool, error) {
	if file == "" {
		return false, nil
	}
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Tender{}).Where("file = ?", file)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tenderRepository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Tender{}).
		Where("status = ? AND published_at IS NOT NULL AND published_at <= ?", domain.StatusDraft, now).
		Updates(map[string]interface{}{
			"status":     domain.StatusPublished,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}
