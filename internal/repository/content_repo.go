package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"gorm.io/gorm"
)

// ContentRepository stores generic records, one table per content type
type ContentRepository interface {
	Create(ctx context.Context, table string, rec *domain.Record) error
	FindByID(ctx context.Context, table, id string) (*domain.Record, error)
	FindBySlug(ctx context.Context, table, slug string) (*domain.Record, error)
	List(ctx context.Context, table string, opts domain.ListOptions) ([]*domain.Record, int64, error)
	ListByStatus(ctx context.Context, table string, status domain.Status) ([]*domain.Record, error)
	ExistsBySlug(ctx context.Context, table, slug, excludeID string) (bool, error)
	Update(ctx context.Context, table string, rec *domain.Record) error
	Delete(ctx context.Context, table, id string) error
	Count(ctx context.Context, table string, status domain.Status) (int64, error)

	// PublishDue promotes drafts whose published_at has passed
	PublishDue(ctx context.Context, table string, now time.Time) (int64, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) table(ctx context.Context, table string) *gorm.DB {
	return r.db.WithContext(ctx).Table(table)
}

// Create inserts a record; a unique slug violation maps to ErrDuplicateSlug
func (r *contentRepository) Create(ctx context.Context, table string, rec *domain.Record) error {
	return translateError(r.table(ctx, table).Create(rec).Error)
}

// FindByID retrieves a record by its ID
func (r *contentRepository) FindByID(ctx context.Context, table, id string) (*domain.Record, error) {
	var rec domain.Record
	err := r.table(ctx, table).Where("id = ?", id).First(&rec).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

// FindBySlug retrieves a record by its slug
func (r *contentRepository) FindBySlug(ctx context.Context, table, slug string) (*domain.Record, error) {
	var rec domain.Record
	err := r.table(ctx, table).Where("slug = ?", slug).First(&rec).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

// List returns one page ordered newest first, plus the total matching count
func (r *contentRepository) List(ctx context.Context, table string, opts domain.ListOptions) ([]*domain.Record, int64, error) {
	opts.Normalize()

	query := r.table(ctx, table)
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if q := strings.TrimSpace(opts.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		conds := []string{"LOWER(slug) LIKE ?"}
		args := []any{like}
		for _, name := range opts.SearchFields {
			if !fieldName.MatchString(name) {
				continue
			}
			conds = append(conds, "LOWER("+jsonValue(r.db, "fields", name)+") LIKE ?")
			args = append(args, like)
		}
		query = query.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*domain.Record
	err := query.
		Order("created_at DESC, id DESC").
		Limit(opts.Limit).
		Offset(opts.Offset()).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListByStatus returns every record with status, newest first
func (r *contentRepository) ListByStatus(ctx context.Context, table string, status domain.Status) ([]*domain.Record, error) {
	var records []*domain.Record
	err := r.table(ctx, table).
		Where("status = ?", status).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	return records, err
}

// ExistsBySlug reports whether another record of the table holds slug
func (r *contentRepository) ExistsBySlug(ctx context.Context, table, slug, excludeID string) (bool, error) {
	var count int64
	query := r.table(ctx, table).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update overwrites the mutable columns of an existing record
func (r *contentRepository) Update(ctx context.Context, table string, rec *domain.Record) error {
	rec.UpdatedAt = time.Now()
	result := r.table(ctx, table).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"slug":         rec.Slug,
			"status":       rec.Status,
			"published_at": rec.PublishedAt,
			"fields":       rec.Fields,
			"updated_at":   rec.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete removes a record by ID
func (r *contentRepository) Delete(ctx context.Context, table, id string) error {
	result := r.table(ctx, table).Where("id = ?", id).Delete(&domain.Record{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Count returns the number of records, optionally restricted to a status
func (r *contentRepository) Count(ctx context.Context, table string, status domain.Status) (int64, error) {
	var count int64
	query := r.table(ctx, table)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *contentRepository) PublishDue(ctx context.Context, table string, now time.Time) (int64, error) {
	result := r.table(ctx, table).
		Where("status = ? AND published_at IS NOT NULL AND published_at <= ?", domain.StatusDraft, now).
		Updates(map[string]interface{}{
			"status":     domain.StatusPublished,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// translateError maps GORM errors onto the common taxonomy
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return common.ErrDuplicateSlug
	default:
		return err
	}
}

// fieldName guards the JSON keys interpolated into jsonValue
var fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// jsonValue extracts one key of a JSON column as text on each dialect.
// Keys and structure never take part in the match, only the value.
func jsonValue(db *gorm.DB, column, key string) string {
	switch db.Dialector.Name() {
	case "postgres":
		return column + "->>'" + key + "'"
	case "mysql":
		return "JSON_UNQUOTE(JSON_EXTRACT(" + column + ", '$." + key + "'))"
	default:
		return "json_extract(" + column + ", '$." + key + "')"
	}
}
