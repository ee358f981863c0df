package service

import (
	"context"
	"testing"
	"time"

	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestContentService_DuplicateSlugForEverySlugType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, schema := range domain.Schemas() {
		if !schema.SlugUnique {
			continue
		}
		t.Run(string(schema.Type), func(t *testing.T) {
			_, err := f.content.Create(ctx, schema.Route, input(validValues(schema, "same-slug")))
			require.NoError(t, err)

			_, err = f.content.Create(ctx, schema.Route, input(validValues(schema, "same-slug")))
			assert.ErrorIs(t, err, common.ErrDuplicateSlug)
		})
	}
}

func TestContentService_DeleteForEveryType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, schema := range domain.Schemas() {
		t.Run(string(schema.Type), func(t *testing.T) {
			assert.ErrorIs(t, f.content.Delete(ctx, schema.Route, "does-not-exist"), common.ErrNotFound)

			rec, err := f.content.Create(ctx, schema.Route, input(validValues(schema, "to-delete")))
			require.NoError(t, err)

			require.NoError(t, f.content.Delete(ctx, schema.Route, rec.ID))
			_, err = f.content.Get(ctx, schema.Route, rec.ID)
			assert.ErrorIs(t, err, common.ErrNotFound)
		})
	}
}

func TestContentService_NewsMissingContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.Create(ctx, "news", input(map[string]any{
		"title": "Incubation cohort announced",
		"slug":  "cohort-2026",
	}))
	require.ErrorIs(t, err, common.ErrValidationFailed)

	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"content"}, verr.Missing)

	count, err := repository.NewContentRepository(f.db).Count(ctx, "news", "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestContentService_CreateCoercesFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.content.Create(ctx, "startup", input(map[string]any{
		"name":          "Krishi Labs",
		"slug":          "Krishi Labs",
		"description":   "Agritech",
		"founders":      "Asha, Ravi , ,",
		"foundedYear":   "2023",
		"featured":      "on",
		"website":       "https://krishilabs.in",
		"unknownField":  "dropped",
		"fundingRaised": 1500000,
	}))
	require.NoError(t, err)

	assert.Equal(t, "krishi-labs", rec.SlugValue())
	assert.Equal(t, domain.StatusDraft, rec.Status)
	assert.Nil(t, rec.PublishedAt)
	assert.Equal(t, []any{"Asha", "Ravi"}, rec.Fields["founders"])
	assert.Equal(t, float64(2023), rec.Fields["foundedYear"])
	assert.Equal(t, true, rec.Fields["featured"])
	assert.NotContains(t, rec.Fields, "unknownField")
}

func TestContentService_CreateRejectsInvalidValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	values := validValues(mustSchema(t, "team"), "x")
	values["email"] = "not-an-email"
	values["linkedin"] = "linkedin"
	values["status"] = "live"

	_, err := f.content.Create(ctx, "team", input(values))
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Invalid, "email")
	assert.Contains(t, verr.Invalid, "linkedin")
	assert.Contains(t, verr.Invalid, "status")
}

func TestContentService_PublishedStampsTimestamp(t *testing.T) {
	f := newFixture(t)
	values := validValues(mustSchema(t, "faq"), "faq")
	values["status"] = "published"

	rec, err := f.content.Create(context.Background(), "faq", input(values))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, rec.Status)
	assert.NotNil(t, rec.PublishedAt)
}

func TestPublicationTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name      string
		prev      domain.Status
		next      domain.Status
		current   *time.Time
		submitted *time.Time
		want      *time.Time
	}{
		{"new draft", "", domain.StatusDraft, nil, nil, nil},
		{"scheduled draft", "", domain.StatusDraft, nil, &future, &future},
		{"publish stamps now", domain.StatusDraft, domain.StatusPublished, nil, nil, &now},
		{"publish keeps existing", domain.StatusDraft, domain.StatusPublished, &past, nil, &past},
		{"unpublish clears", domain.StatusPublished, domain.StatusDraft, &past, nil, nil},
		{"unpublish ignores past submission", domain.StatusPublished, domain.StatusDraft, &past, &past, nil},
		{"unpublish and reschedule", domain.StatusPublished, domain.StatusDraft, &past, &future, &future},
		{"unarchive clears", domain.StatusArchived, domain.StatusDraft, &past, nil, nil},
		{"draft edit keeps schedule", domain.StatusDraft, domain.StatusDraft, &future, nil, &future},
		{"archive keeps", domain.StatusPublished, domain.StatusArchived, &past, nil, &past},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := publicationTime(tt.prev, tt.next, tt.current, tt.submitted, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v want %v", *got, *tt.want)
		})
	}
}

func TestContentService_UnpublishKeepsFutureSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	values := validValues(mustSchema(t, "faq"), "faq")
	values["status"] = "published"

	rec, err := f.content.Create(ctx, "faq", input(values))
	require.NoError(t, err)

	rec, err = f.content.Update(ctx, "faq", rec.ID, input(map[string]any{
		"status":      "draft",
		"publishedAt": "2099-01-01",
	}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, rec.Status)
	require.NotNil(t, rec.PublishedAt)
	assert.Equal(t, 2099, rec.PublishedAt.Year())
}

func TestContentService_PartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.content.Create(ctx, "event", input(map[string]any{
		"title":       "Demo Day",
		"slug":        "demo-day",
		"description": "Pitch to investors",
		"date":        "2026-03-14",
		"venue":       "GTU Campus",
	}))
	require.NoError(t, err)

	updated, err := f.content.Update(ctx, "event", rec.ID, input(map[string]any{
		"venue":  "Online",
		"status": "published",
	}))
	require.NoError(t, err)

	got, err := f.content.Get(ctx, "event", updated.ID)
	require.NoError(t, err)
	assert.Equal(t, "Online", got.Fields["venue"])
	assert.Equal(t, "Demo Day", got.Fields["title"])
	assert.Equal(t, "Pitch to investors", got.Fields["description"])
	assert.Equal(t, "demo-day", got.SlugValue())
	assert.Equal(t, domain.StatusPublished, got.Status)

	// clearing a required field is rejected
	_, err = f.content.Update(ctx, "event", rec.ID, input(map[string]any{"title": ""}))
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	_, err = f.content.Update(ctx, "event", "missing", input(map[string]any{"venue": "x"}))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestContentService_UpdateToTakenSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	schema := mustSchema(t, "program")

	_, err := f.content.Create(ctx, "program", input(validValues(schema, "seed-fund")))
	require.NoError(t, err)
	other, err := f.content.Create(ctx, "program", input(validValues(schema, "accelerator")))
	require.NoError(t, err)

	_, err = f.content.Update(ctx, "program", other.ID, input(map[string]any{"slug": "seed-fund"}))
	assert.ErrorIs(t, err, common.ErrDuplicateSlug)

	// keeping its own slug is fine
	_, err = f.content.Update(ctx, "program", other.ID, input(map[string]any{"slug": "accelerator"}))
	assert.NoError(t, err)
}

func TestContentService_MultiFileUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.content.Create(ctx, "gallery", input(
		map[string]any{"title": "Hackathon 2026"},
		upload("images", "one.jpg", "1"),
		upload("images", "two.jpg", "2"),
	))
	require.NoError(t, err)
	first := stringList(rec.Fields["images"])
	require.Len(t, first, 2)
	for _, p := range first {
		assert.True(t, f.exists(p), p)
	}

	// append
	rec, err = f.content.Update(ctx, "gallery", rec.ID, input(nil, upload("images", "three.jpg", "3")))
	require.NoError(t, err)
	assert.Len(t, stringList(rec.Fields["images"]), 3)

	// replace removes the previous objects
	in := input(nil, upload("images", "four.jpg", "4"))
	in.ReplaceImages = true
	rec, err = f.content.Update(ctx, "gallery", rec.ID, in)
	require.NoError(t, err)
	current := stringList(rec.Fields["images"])
	require.Len(t, current, 1)
	for _, p := range first {
		assert.False(t, f.exists(p), p)
	}

	// delete removes the remaining object
	require.NoError(t, f.content.Delete(ctx, "gallery", rec.ID))
	assert.False(t, f.exists(current[0]))
}

func TestContentService_SingleFileReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.content.Create(ctx, "partner", input(map[string]any{"name": "SIDBI"}, upload("logo", "logo.png", "a")))
	require.NoError(t, err)
	oldLogo := stringField(rec.Fields, "logo")
	require.True(t, f.exists(oldLogo))

	rec, err = f.content.Update(ctx, "partner", rec.ID, input(nil, upload("logo", "logo-v2.png", "b")))
	require.NoError(t, err)
	assert.False(t, f.exists(oldLogo))
	assert.True(t, f.exists(stringField(rec.Fields, "logo")))

	// submitting an empty value clears the field and its object
	newLogo := stringField(rec.Fields, "logo")
	rec, err = f.content.Update(ctx, "partner", rec.ID, input(map[string]any{"logo": ""}))
	require.NoError(t, err)
	assert.NotContains(t, rec.Fields, "logo")
	assert.False(t, f.exists(newLogo))
}

func TestContentService_RejectsEscapingPaths(t *testing.T) {
	f := newFixture(t)
	_, err := f.content.Create(context.Background(), "report", input(map[string]any{
		"title": "Annual Report",
		"year":  2025,
		"file":  "../../etc/passwd",
	}))
	assert.ErrorIs(t, err, common.ErrValidationFailed)
}

func TestContentService_PublicReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	schema := mustSchema(t, "news")

	draft, err := f.content.Create(ctx, "news", input(validValues(schema, "draft-story")))
	require.NoError(t, err)

	values := validValues(schema, "live-story")
	values["status"] = "published"
	live, err := f.content.Create(ctx, "news", input(values))
	require.NoError(t, err)

	_, err = f.content.GetPublished(ctx, "news", draft.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := f.content.GetPublished(ctx, "news", "live-story")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)

	page, err := f.content.ListPublished(ctx, "news", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, live.ID, page.Items[0].ID)
}

func TestContentService_UnknownType(t *testing.T) {
	f := newFixture(t)
	_, err := f.content.Create(context.Background(), "podcasts", input(nil))
	assert.ErrorIs(t, err, common.ErrUnknownContentType)
}

func TestContentService_IndexesWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	indexer := &mockIndexer{}
	svc := NewContentService(repository.NewContentRepository(f.db), f.store, nil, indexer)

	indexer.On("IndexRecord", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.Record")).Return().Twice()
	indexer.On("RemoveRecord", mock.Anything, domain.TypeFAQ, mock.AnythingOfType("string")).Return().Once()

	rec, err := svc.Create(ctx, "faq", input(validValues(mustSchema(t, "faq"), "q")))
	require.NoError(t, err)
	_, err = svc.Update(ctx, "faq", rec.ID, input(map[string]any{"status": "published"}))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "faq", rec.ID))

	indexer.AssertExpectations(t)
}

func mustSchema(t *testing.T, name string) *domain.Schema {
	t.Helper()
	schema, ok := domain.LookupSchema(name)
	require.True(t, ok, name)
	return schema
}
