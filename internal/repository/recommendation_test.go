//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/paperdesk/paperdesk/internal/service"
	"github.com/paperdesk/paperdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExternalRecommendation(userID string, score float64) *domain.Recommendation {
	return &domain.Recommendation{
		ID:              uuid.NewString(),
		UserID:          userID,
		ExternalPaperID: "2401.0" + uuid.NewString()[:4],
		Title:           "Attention Is All You Need",
		Authors:         "Vaswani et al.",
		Source:          domain.PaperSourceArxiv,
		URL:             "https://arxiv.org/abs/1706.03762",
		Reason:          "related to your uploaded research topics",
		Score:           score,
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestRecommendationRepository_CreateBatchAndList(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRecommendationRepository(pool)

	userID := uuid.NewString()
	low := newExternalRecommendation(userID, 0.55)
	high := newExternalRecommendation(userID, 0.90)
	other := newExternalRecommendation(uuid.NewString(), 0.70)

	err := repo.CreateBatch(ctx, []*domain.Recommendation{low, high, other})
	require.NoError(t, err)

	recs, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, high.ID, recs[0].ID)
	assert.Equal(t, low.ID, recs[1].ID)
}

func TestRecommendationRepository_DeleteByUser(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRecommendationRepository(pool)

	userID := uuid.NewString()
	require.NoError(t, repo.CreateBatch(ctx, []*domain.Recommendation{
		newExternalRecommendation(userID, 0.90),
		newExternalRecommendation(userID, 0.85),
	}))

	require.NoError(t, repo.DeleteByUser(ctx, userID))

	recs, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// idempotent on an already-empty set
	require.NoError(t, repo.DeleteByUser(ctx, userID))
}

func TestRecommendationRepository_UpdateFeedback(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRecommendationRepository(pool)

	rec := newExternalRecommendation(uuid.NewString(), 0.80)
	require.NoError(t, repo.CreateBatch(ctx, []*domain.Recommendation{rec}))

	require.NoError(t, repo.UpdateFeedback(ctx, rec.ID, "LIKE"))

	retrieved, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "LIKE", retrieved.Feedback)

	err = repo.UpdateFeedback(ctx, uuid.NewString(), "LIKE")
	assert.ErrorIs(t, err, domain.ErrRecommendationNotFound)
}

func TestTxRunner_ReplaceAtomically(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRecommendationRepository(pool)
	runner := NewTxRunner(pool)

	userID := uuid.NewString()
	old := newExternalRecommendation(userID, 0.90)
	require.NoError(t, repo.CreateBatch(ctx, []*domain.Recommendation{old}))

	replacement := newExternalRecommendation(userID, 0.70)
	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Recommendations().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return repos.Recommendations().CreateBatch(ctx, []*domain.Recommendation{replacement})
	})
	require.NoError(t, err)

	recs, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, replacement.ID, recs[0].ID)
}

func TestTxRunner_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRecommendationRepository(pool)
	runner := NewTxRunner(pool)

	userID := uuid.NewString()
	existing := newExternalRecommendation(userID, 0.90)
	require.NoError(t, repo.CreateBatch(ctx, []*domain.Recommendation{existing}))

	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Recommendations().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	recs, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, existing.ID, recs[0].ID)
}
