package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/repository"
	"github.com/gtuventures/ventures-backend/internal/service"
	"github.com/gtuventures/ventures-backend/internal/testutil"
	"github.com/gtuventures/ventures-backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReindexer struct {
	mock.Mock
}

func (m *mockReindexer) ReindexType(ctx context.Context, schema *domain.Schema) (int, error) {
	args := m.Called(ctx, schema)
	return args.Int(0), args.Error(1)
}

func (m *mockReindexer) ReindexTenders(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestPublisher_RunOnce(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	content := repository.NewContentRepository(db)
	tenders := repository.NewTenderRepository(db)

	now := time.Now()
	past := now.Add(-10 * time.Minute)
	future := now.Add(10 * time.Minute)

	require.NoError(t, content.Create(ctx, "events", &domain.Record{ID: "due", Status: domain.StatusDraft, PublishedAt: &past}))
	require.NoError(t, content.Create(ctx, "events", &domain.Record{ID: "later", Status: domain.StatusDraft, PublishedAt: &future}))
	id := uuid.NewString()
	require.NoError(t, tenders.Create(ctx, &domain.Tender{
		ID: id, ParentID: id, Version: 1, IsLatest: true,
		Type: domain.TenderKindCircular, Title: "Holiday circular",
		Status: domain.StatusDraft, PublishedAt: &past,
	}))

	search := &mockReindexer{}
	search.On("ReindexType", mock.Anything, mock.MatchedBy(func(s *domain.Schema) bool { return s.Type == domain.TypeEvent })).Return(1, nil).Once()
	search.On("ReindexTenders", mock.Anything).Return(1, nil).Once()

	p := NewPublisher(content, tenders, nil, search)
	p.now = func() time.Time { return now }

	n, err := p.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	search.AssertExpectations(t)

	rec, err := content.FindByID(ctx, "events", "due")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, rec.Status)

	rec, err = content.FindByID(ctx, "events", "later")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, rec.Status)

	// nothing left to publish
	n, err = p.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublisher_RunOnceLeavesUnpublishedRecordsAlone(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	content := repository.NewContentRepository(db)
	tenders := repository.NewTenderRepository(db)
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	contentSvc := service.NewContentService(content, store, nil, nil)
	tenderSvc := service.NewTenderService(tenders, store, nil, nil)

	faq, err := contentSvc.Create(ctx, "faq", &domain.ContentInput{Values: map[string]any{
		"question": "When is demo day?",
		"answer":   "In March",
		"status":   "published",
	}})
	require.NoError(t, err)
	require.NotNil(t, faq.PublishedAt)

	faq, err = contentSvc.Update(ctx, "faq", faq.ID, &domain.ContentInput{Values: map[string]any{"status": "draft"}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, faq.Status)
	assert.Nil(t, faq.PublishedAt)

	tender, err := tenderSvc.CreateTender(ctx, &domain.ContentInput{Values: map[string]any{
		"title":  "Road Construction RFP",
		"status": "published",
	}})
	require.NoError(t, err)
	tender, err = tenderSvc.EditTender(ctx, tender.ID, &domain.ContentInput{Values: map[string]any{"status": "draft"}}, false)
	require.NoError(t, err)
	assert.Nil(t, tender.PublishedAt)

	search := &mockReindexer{}
	p := NewPublisher(content, tenders, nil, search)
	p.now = func() time.Time { return time.Now().Add(time.Hour) }

	n, err := p.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	search.AssertNotCalled(t, "ReindexType", mock.Anything, mock.Anything)
	search.AssertNotCalled(t, "ReindexTenders", mock.Anything)

	rec, err := content.FindByID(ctx, string(domain.TypeFAQ), faq.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, rec.Status)

	got, err := tenderSvc.GetTender(ctx, tender.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, got.Status)
}

func TestSchedulePublishing_InvalidSpec(t *testing.T) {
	_, err := SchedulePublishing(context.Background(), &Publisher{}, "not a spec")
	assert.Error(t, err)
}

func TestSchedulePublishing_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, err := SchedulePublishing(ctx, &Publisher{}, "@every 1h")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	cancel()
}
