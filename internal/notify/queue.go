package notify

import (
	"context"
	"encoding/json"
	"time"

	"eduledger/internal/logger"
	"eduledger/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	maxTries       = 3
	popTimeout     = 2 * time.Second
)

// Publisher accepts events for asynchronous delivery. Settlement never waits on it.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Queue is a Redis list backed Publisher plus the worker draining it.
type Queue struct {
	redis      *redis.Client
	mailer     Mailer
	retryDelay time.Duration
}

func NewQueue(rdb *redis.Client, mailer Mailer) *Queue {
	return &Queue{
		redis:      rdb,
		mailer:     mailer,
		retryDelay: 5 * time.Second,
	}
}

func (q *Queue) Publish(ctx context.Context, e Event) error {
	if e.Created.IsZero() {
		e.Created = time.Now()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	if err := q.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Error("failed to queue notification", "type", e.Type, "user_id", e.UserID, "error", err)
		return err
	}

	logger.Debug("notification queued", "type", e.Type, "user_id", e.UserID)
	return nil
}

// Start drains the queue until ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	logger.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("notification worker stopped")
			return
		default:
			q.processNext(ctx)
		}
	}
}

func (q *Queue) processNext(ctx context.Context) {
	result, err := q.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		return
	}

	var e Event
	if err := json.Unmarshal([]byte(result[1]), &e); err != nil {
		logger.Error("bad notification payload", "error", err)
		return
	}

	e.Tries++
	if err := q.mailer.Send(e.To, e.Subject, e.Body); err != nil {
		logger.Warn("notification delivery failed", "type", e.Type, "to", e.To, "attempt", e.Tries, "error", err)

		if e.Tries < maxTries {
			q.retry(ctx, e)
		} else {
			metrics.RecordNotification(string(e.Type), "failed")
			q.saveFailed(ctx, e, err)
		}
		return
	}

	metrics.RecordNotification(string(e.Type), "sent")
	logger.Info("notification sent", "type", e.Type, "to", e.To)
}

func (q *Queue) retry(ctx context.Context, e Event) {
	if q.retryDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(q.retryDelay):
		}
	}

	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := q.redis.LPush(context.WithoutCancel(ctx), queueKey, string(data)).Err(); err != nil {
		logger.Error("failed to requeue notification", "type", e.Type, "error", err)
	}
}

func (q *Queue) saveFailed(ctx context.Context, e Event, cause error) {
	failed := map[string]interface{}{
		"event": e,
		"error": cause.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	if err := q.redis.LPush(context.WithoutCancel(ctx), failedQueueKey, string(data)).Err(); err != nil {
		logger.Error("failed to store undeliverable notification", "type", e.Type, "error", err)
		return
	}
	logger.Error("notification moved to failed queue", "type", e.Type, "to", e.To)
}

func (q *Queue) QueueLength(ctx context.Context) int64 {
	length, _ := q.redis.LLen(ctx, queueKey).Result()
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

func (q *Queue) Close() error {
	return q.redis.Close()
}

// Nop discards events. Used when no queue is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
