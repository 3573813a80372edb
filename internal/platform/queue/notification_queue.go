package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dsa_arena/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Pop when no job arrived within the wait.
var ErrEmpty = errors.New("queue empty")

const sentKeyPrefix = "notification:sent:"

// NotificationQueue is a Redis list of JSON-encoded notification jobs.
type NotificationQueue struct {
	rdb  *redis.Client
	name string
}

func NewNotificationQueue(rdb *redis.Client, name string) *NotificationQueue {
	return &NotificationQueue{rdb: rdb, name: name}
}

func (q *NotificationQueue) Publish(ctx context.Context, n model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification %s: %w", n.ID, err)
	}
	return nil
}

// Pop blocks for up to wait and returns the oldest job.
func (q *NotificationQueue) Pop(ctx context.Context, wait time.Duration) (*model.Notification, error) {
	result, err := q.rdb.BRPop(ctx, wait, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	// result[0] is the queue name, result[1] the payload.
	var n model.Notification
	if err := json.Unmarshal([]byte(result[1]), &n); err != nil {
		return nil, fmt.Errorf("decode notification payload: %w", err)
	}
	return &n, nil
}

// Claim marks the job as delivered. It returns false when another consumer already claimed it.
func (q *NotificationQueue) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := q.rdb.SetNX(ctx, sentKeyPrefix+id, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim notification %s: %w", id, err)
	}
	return ok, nil
}
