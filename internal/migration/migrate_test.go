package migration

import (
	"context"
	"testing"

	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestRun_Idempotent(t *testing.T) {
	db := openMemoryDB(t)

	ctx := context.Background()
	require.NoError(t, Run(ctx, db))
	require.NoError(t, Run(ctx, db))

	for _, table := range Tables() {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Table("news").Migrator().HasIndex(&domain.Record{}, "idx_news_slug"))
	assert.False(t, db.Table("gallery").Migrator().HasIndex(&domain.Record{}, "idx_gallery_slug"))

	var sections int64
	require.NoError(t, db.Model(&domain.HomepageSection{}).Count(&sections).Error)
	assert.Equal(t, int64(len(domain.DefaultHomepageSections)), sections)
}

func TestRun_SlugUniquePerTable(t *testing.T) {
	db := openMemoryDB(t)
	require.NoError(t, Run(context.Background(), db))

	slug := "demo-day"
	require.NoError(t, db.Table("news").Create(&domain.Record{ID: "a", Slug: &slug, Status: domain.StatusDraft}).Error)
	// same slug in another table is fine
	require.NoError(t, db.Table("events").Create(&domain.Record{ID: "b", Slug: &slug, Status: domain.StatusDraft}).Error)

	err := db.Table("news").Create(&domain.Record{ID: "c", Slug: &slug, Status: domain.StatusDraft}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
