//go:build integration

package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paperdesk/paperdesk/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisQueue_PublishAnalysisRequest(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRedisContainer(ctx, t)
	defer rc.Terminate(ctx)

	client := redis.NewClient(&redis.Options{Addr: rc.Addr()})
	defer client.Close()

	q := NewRedisQueue(client)

	req := AnalysisRequest{
		DocumentID: uuid.NewString(),
		UserID:     uuid.NewString(),
		Filename:   "paper.pdf",
	}
	require.NoError(t, q.PublishAnalysisRequest(ctx, req))

	msgs, err := client.XRange(ctx, "document-analysis", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var got AnalysisRequest
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &got))
	assert.Equal(t, req.DocumentID, got.DocumentID)
	assert.Equal(t, req.UserID, got.UserID)
	assert.Equal(t, "paper.pdf", got.Filename)
	assert.WithinDuration(t, time.Now().UTC(), got.EnqueuedAt, time.Minute)
}
