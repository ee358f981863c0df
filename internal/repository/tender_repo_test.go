package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/repository"
	"github.com/gtuventures/ventures-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createChainRoot(t *testing.T, repo repository.TenderRepository, title, file string) *domain.Tender {
	t.Helper()
	id := uuid.NewString()
	tender := &domain.Tender{
		ID:       id,
		Type:     domain.TenderKindTender,
		Title:    title,
		Status:   domain.StatusDraft,
		File:     file,
		ParentID: id,
		Version:  1,
		IsLatest: true,
	}
	require.NoError(t, repo.Create(context.Background(), tender))
	return tender
}

func forkWithTitle(title string) repository.ForkBuilder {
	return func(old *domain.Tender) (*domain.Tender, error) {
		snap, err := old.Snapshot()
		if err != nil {
			return nil, err
		}
		return &domain.Tender{
			ID:           uuid.NewString(),
			Type:         old.Type,
			Title:        title,
			Status:       old.Status,
			File:         old.File,
			PreviousData: snap,
		}, nil
	}
}

func TestTenderRepository_ForkAndChain(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTenderRepository(testutil.NewDB(t))
	v1 := createChainRoot(t, repo, "Road Construction RFP", "tenders/rfp.pdf")

	v2, prev, err := repo.Fork(ctx, v1.ID, forkWithTitle("Road Construction RFP (Revised)"))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	assert.True(t, v2.IsLatest)
	assert.Equal(t, v1.ID, v2.ParentID)
	assert.False(t, prev.IsLatest)

	chain, err := repo.ListChain(ctx, v1.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, 2, chain[0].Version)
	assert.Equal(t, 1, chain[1].Version)
	assert.False(t, chain[1].IsLatest)
	assert.Equal(t, "Road Construction RFP", chain[0].PreviousData["title"])
}

func TestTenderRepository_ForkRequiresLatest(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTenderRepository(testutil.NewDB(t))
	v1 := createChainRoot(t, repo, "Lab Equipment", "")

	_, _, err := repo.Fork(ctx, v1.ID, forkWithTitle("v2"))
	require.NoError(t, err)

	_, _, err = repo.Fork(ctx, v1.ID, forkWithTitle("v2 again"))
	assert.ErrorIs(t, err, common.ErrNotLatestVersion)

	_, _, err = repo.Fork(ctx, "missing", forkWithTitle("x"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTenderRepository_DeleteLatestPromotes(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTenderRepository(testutil.NewDB(t))
	v1 := createChainRoot(t, repo, "Canteen Contract", "")
	v2, _, err := repo.Fork(ctx, v1.ID, forkWithTitle("Canteen Contract v2"))
	require.NoError(t, err)
	v3, _, err := repo.Fork(ctx, v2.ID, forkWithTitle("Canteen Contract v3"))
	require.NoError(t, err)

	deleted, promoted, err := repo.Delete(ctx, v3.ID)
	require.NoError(t, err)
	assert.Equal(t, v3.ID, deleted.ID)
	require.NotNil(t, promoted)
	assert.Equal(t, v2.ID, promoted.ID)

	got, err := repo.FindByID(ctx, v2.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLatest)

	// deleting a non-latest version promotes nothing
	_, promoted, err = repo.Delete(ctx, v1.ID)
	require.NoError(t, err)
	assert.Nil(t, promoted)

	_, _, err = repo.Delete(ctx, v1.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTenderRepository_DeleteChainAndFileRefs(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTenderRepository(testutil.NewDB(t))
	v1 := createChainRoot(t, repo, "Hostel Repairs", "tenders/hostel.pdf")
	v2, _, err := repo.Fork(ctx, v1.ID, forkWithTitle("Hostel Repairs v2"))
	require.NoError(t, err)

	shared, err := repo.FileReferenced(ctx, "tenders/hostel.pdf", v2.ID)
	require.NoError(t, err)
	assert.True(t, shared)

	versions, err := repo.DeleteChain(ctx, v1.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	shared, err = repo.FileReferenced(ctx, "tenders/hostel.pdf")
	require.NoError(t, err)
	assert.False(t, shared)

	_, err = repo.DeleteChain(ctx, v1.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTenderRepository_ListLatestByDefault(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTenderRepository(testutil.NewDB(t))
	v1 := createChainRoot(t, repo, "Tender A", "")
	_, _, err := repo.Fork(ctx, v1.ID, forkWithTitle("Tender A v2"))
	require.NoError(t, err)
	circular := createChainRoot(t, repo, "Circular B", "")
	circular.Type = domain.TenderKindCircular
	require.NoError(t, repo.Update(ctx, circular))

	latest, total, err := repo.List(ctx, domain.TenderListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, latest, 2)

	all, total, err := repo.List(ctx, domain.TenderListOptions{AllVersions: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	circulars, _, err := repo.List(ctx, domain.TenderListOptions{Kind: domain.TenderKindCircular})
	require.NoError(t, err)
	require.Len(t, circulars, 1)
	assert.Equal(t, "Circular B", circulars[0].Title)
}

func TestTenderRepository_PublishDue(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTenderRepository(testutil.NewDB(t))
	v1 := createChainRoot(t, repo, "Scheduled", "")
	past := time.Now().Add(-time.Minute)
	v1.PublishedAt = &past
	require.NoError(t, repo.Update(ctx, v1))

	n, err := repo.PublishDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	published, err := repo.ListPublishedLatest(ctx)
	require.NoError(t, err)
	assert.Len(t, published, 1)
}
