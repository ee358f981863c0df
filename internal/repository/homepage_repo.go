package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HomepageRepository stores the homepage singleton sections
type HomepageRepository interface {
	List(ctx context.Context) ([]*domain.HomepageSection, error)
	FindByKey(ctx context.Context, key string) (*domain.HomepageSection, error)
	Save(ctx context.Context, section *domain.HomepageSection) error
	// EnsureKeys inserts empty draft sections for keys that do not exist yet
	EnsureKeys(ctx context.Context, keys []string) (int, error)
}

type homepageRepository struct {
	db *gorm.DB
}

// NewHomepageRepository creates a new HomepageRepository
func NewHomepageRepository(db *gorm.DB) HomepageRepository {
	return &homepageRepository{db: db}
}

func (r *homepageRepository) List(ctx context.Context) ([]*domain.HomepageSection, error) {
	var sections []*domain.HomepageSection
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&sections).Error
	return sections, err
}

func (r *homepageRepository) FindByKey(ctx context.Context, key string) (*domain.HomepageSection, error) {
	var section domain.HomepageSection
	if err := r.db.WithContext(ctx).Where(&domain.HomepageSection{Key: key}).First(&section).Error; err != nil {
		return nil, translateError(err)
	}
	return &section, nil
}

// Save inserts the section or overwrites the existing row with the same key
func (r *homepageRepository) Save(ctx context.Context, section *domain.HomepageSection) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	section.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "image", "status", "updated_at"}),
	}).Create(section).Error
}

func (r *homepageRepository) EnsureKeys(ctx context.Context, keys []string) (int, error) {
	created := 0
	for _, key := range keys {
		section := &domain.HomepageSection{
			ID:     uuid.NewString(),
			Key:    key,
			Fields: datatypes.JSONMap{},
			Status: domain.StatusDraft,
		}
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
			Create(section)
		if result.Error != nil {
			return created, result.Error
		}
		created += int(result.RowsAffected)
	}
	return created, nil
}
