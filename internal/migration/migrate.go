package migration

import (
	"context"
	"fmt"

	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/repository"
	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	"gorm.io/gorm"
)

// Tables lists every table the migration manages, in creation order
func Tables() []string {
	tables := make([]string, 0, len(domain.Schemas())+2)
	for _, s := range domain.Schemas() {
		tables = append(tables, s.Table)
	}
	return append(tables, domain.TenderSchema.Table, domain.HomepageSchema.Table)
}

// Run creates the content tables and their indexes, then seeds the homepage sections.
// Safe to run repeatedly.
func Run(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	for _, s := range domain.Schemas() {
		if err := migrateContentTable(db, s); err != nil {
			return err
		}
	}

	if err := db.AutoMigrate(&domain.Tender{}, &domain.HomepageSection{}); err != nil {
		return fmt.Errorf("migrate tenders/homepage: %w", err)
	}

	created, err := repository.NewHomepageRepository(db).EnsureKeys(ctx, domain.DefaultHomepageSections)
	if err != nil {
		return fmt.Errorf("seed homepage sections: %w", err)
	}
	if created > 0 {
		pkglogger.GetLogger().Info().Int("created", created).Msg("[Migration] seeded homepage sections")
	}
	return nil
}

// migrateContentTable creates one generic record table. Index names carry
// the table name because the Record struct is shared by every table.
func migrateContentTable(db *gorm.DB, s *domain.Schema) error {
	tx := db.Table(s.Table)
	if err := tx.AutoMigrate(&domain.Record{}); err != nil {
		return fmt.Errorf("migrate %s: %w", s.Table, err)
	}

	indexes := []struct {
		name    string
		columns string
		unique  bool
	}{
		{name: "idx_" + s.Table + "_status_created", columns: "status, created_at"},
		{name: "idx_" + s.Table + "_created", columns: "created_at"},
	}
	if s.HasSlug() {
		indexes = append(indexes, struct {
			name    string
			columns string
			unique  bool
		}{name: "idx_" + s.Table + "_slug", columns: "slug", unique: s.SlugUnique})
	}

	for _, idx := range indexes {
		if db.Table(s.Table).Migrator().HasIndex(&domain.Record{}, idx.name) {
			continue
		}
		kind := "INDEX"
		if idx.unique {
			kind = "UNIQUE INDEX"
		}
		stmt := fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, idx.name, s.Table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
