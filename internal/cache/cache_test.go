//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/paperdesk/paperdesk/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisClient(ctx context.Context, t *testing.T) (*redis.Client, func()) {
	rc := testutil.NewRedisContainer(ctx, t)
	client := redis.NewClient(&redis.Options{Addr: rc.Addr()})
	return client, func() {
		client.Close()
		rc.Terminate(ctx)
	}
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newRedisClient(ctx, t)
	defer cleanup()

	c := NewRedisCache(client, time.Hour)

	userID := uuid.NewString()
	recs := []*domain.Recommendation{
		{
			ID:              uuid.NewString(),
			UserID:          userID,
			ExternalPaperID: "2401.01234",
			Title:           "Scaling Laws for Neural Language Models",
			Source:          domain.PaperSourceArxiv,
			Score:           0.9,
			CreatedAt:       time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	_, ok := c.Get(ctx, userID)
	assert.False(t, ok)

	c.Set(ctx, userID, recs)

	got, ok := c.Get(ctx, userID)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, recs[0].ID, got[0].ID)
	assert.Equal(t, recs[0].Score, got[0].Score)
}

func TestRedisCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newRedisClient(ctx, t)
	defer cleanup()

	c := NewRedisCache(client, time.Hour)

	userID := uuid.NewString()
	c.Set(ctx, userID, []*domain.Recommendation{{ID: uuid.NewString(), UserID: userID, ExternalPaperID: "x", Title: "t", Score: 0.5}})

	c.Invalidate(ctx, userID)

	_, ok := c.Get(ctx, userID)
	assert.False(t, ok)
}

func TestRedisCache_Expiry(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newRedisClient(ctx, t)
	defer cleanup()

	c := NewRedisCache(client, 100*time.Millisecond)

	userID := uuid.NewString()
	c.Set(ctx, userID, []*domain.Recommendation{{ID: uuid.NewString(), UserID: userID, ExternalPaperID: "x", Title: "t", Score: 0.5}})

	time.Sleep(200 * time.Millisecond)

	_, ok := c.Get(ctx, userID)
	assert.False(t, ok)
}
