// Package queue publishes document analysis requests for asynchronous
// processing. Publishing is best effort: the upload path never fails
// because the queue is down.
package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	analysisStream = "document-analysis"
	defaultMaxLen  = 100000
)

// AnalysisRequest asks a worker to extract topics from an uploaded document.
type AnalysisRequest struct {
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	Filename   string    `json:"filename"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// AnalysisQueue hands uploaded documents to the analysis pipeline.
type AnalysisQueue interface {
	PublishAnalysisRequest(ctx context.Context, req AnalysisRequest) error
}

// RedisQueue appends analysis requests to a Redis stream.
type RedisQueue struct {
	client *redis.Client
	maxLen int64
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, maxLen: defaultMaxLen}
}

func (q *RedisQueue) PublishAnalysisRequest(ctx context.Context, req AnalysisRequest) error {
	if req.EnqueuedAt.IsZero() {
		req.EnqueuedAt = time.Now().UTC()
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: analysisStream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		log.Printf("queue: publish failed for document %s: %v", req.DocumentID, err)
		return err
	}
	return nil
}

// NopQueue is used when no Redis instance is configured.
type NopQueue struct{}

func NewNopQueue() *NopQueue { return &NopQueue{} }

func (*NopQueue) PublishAnalysisRequest(ctx context.Context, req AnalysisRequest) error {
	return nil
}
