package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"queueline-app/internal/entity"

	"github.com/go-redis/redis/v8"
)

// CacheRepository keeps short-lived read projections of queue state so the
// high-traffic size/ETA reads do not hit postgres on every poll. Entries are
// invalidated on every queue mutation.
type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheRepository(client *redis.Client, ttl time.Duration) *CacheRepository {
	return &CacheRepository{
		client: client,
		ttl:    ttl,
	}
}

func queueSizeKey(queueID int64) string {
	return fmt.Sprintf("queueline:queue_size:%d", queueID)
}

func queueKey(queueID int64) string {
	return fmt.Sprintf("queueline:queue:%d", queueID)
}

func (r *CacheRepository) SetQueueSize(ctx context.Context, queueID int64, size int) error {
	return r.client.Set(ctx, queueSizeKey(queueID), size, r.ttl).Err()
}

func (r *CacheRepository) GetQueueSize(ctx context.Context, queueID int64) (int, error) {
	size, err := r.client.Get(ctx, queueSizeKey(queueID)).Int()
	if err != nil {
		return 0, err
	}
	return size, nil
}

func (r *CacheRepository) SetQueue(ctx context.Context, queue *entity.Queue) error {
	data, err := json.Marshal(queue)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, queueKey(queue.ID), data, r.ttl).Err()
}

func (r *CacheRepository) GetQueue(ctx context.Context, queueID int64) (*entity.Queue, error) {
	data, err := r.client.Get(ctx, queueKey(queueID)).Result()
	if err != nil {
		return nil, err
	}

	var queue entity.Queue
	if err := json.Unmarshal([]byte(data), &queue); err != nil {
		return nil, err
	}

	return &queue, nil
}

// Invalidate drops all cached projections of a queue. Called after every
// mutation that changes the queue or its active ticket set.
func (r *CacheRepository) Invalidate(ctx context.Context, queueID int64) error {
	return r.client.Del(ctx, queueSizeKey(queueID), queueKey(queueID)).Err()
}
