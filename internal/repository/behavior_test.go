//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/paperdesk/paperdesk/internal/pagination"
	"github.com/paperdesk/paperdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBehaviorRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docs := NewDocumentRepository(pool)
	repo := NewBehaviorRepository(pool)

	userID := uuid.NewString()
	doc := newTestDocument(userID)
	require.NoError(t, docs.Create(ctx, doc))

	now := time.Now().UTC().Truncate(time.Microsecond)
	first := &domain.BehaviorEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		DocumentID: doc.ID,
		Type:       domain.BehaviorTypeView,
		CreatedAt:  now.Add(-time.Minute),
	}
	second := &domain.BehaviorEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      domain.BehaviorTypeUpload,
		Payload:   `{"filename":"paper.pdf"}`,
		CreatedAt: now,
	}

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	events, err := repo.ListByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, second.ID, events[0].ID)
	assert.Equal(t, second.Payload, events[0].Payload)
	assert.Equal(t, first.ID, events[1].ID)
	assert.Equal(t, doc.ID, events[1].DocumentID)
}

func TestBehaviorRepository_CountViewAnalyze(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docs := NewDocumentRepository(pool)
	repo := NewBehaviorRepository(pool)

	userID := uuid.NewString()
	doc := newTestDocument(userID)
	require.NoError(t, docs.Create(ctx, doc))

	now := time.Now().UTC().Truncate(time.Microsecond)
	for _, bt := range []domain.BehaviorType{domain.BehaviorTypeView, domain.BehaviorTypeAnalyze, domain.BehaviorTypeUpload} {
		e := &domain.BehaviorEvent{
			ID:         uuid.NewString(),
			UserID:     userID,
			DocumentID: doc.ID,
			Type:       bt,
			CreatedAt:  now,
		}
		require.NoError(t, repo.Create(ctx, e))
	}

	count, err := repo.CountViewAnalyze(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBehaviorRepository_ListByUserPage(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewBehaviorRepository(pool)

	userID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)

	ids := make([]string, 5)
	for i := 0; i < 5; i++ {
		event := &domain.BehaviorEvent{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      domain.BehaviorTypeView,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, event))
		ids[i] = event.ID
	}

	firstPage, err := repo.ListByUserPage(ctx, userID, 3, nil)
	require.NoError(t, err)
	require.Len(t, firstPage, 3)
	assert.Equal(t, ids[0], firstPage[0].ID)
	assert.Equal(t, ids[2], firstPage[2].ID)

	cursor := &pagination.Cursor{
		LastID:    firstPage[2].ID,
		Timestamp: firstPage[2].CreatedAt,
	}
	secondPage, err := repo.ListByUserPage(ctx, userID, 3, cursor)
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	assert.Equal(t, ids[3], secondPage[0].ID)
	assert.Equal(t, ids[4], secondPage[1].ID)
}
