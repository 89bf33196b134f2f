package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReminderMarker remembers which tickets were recently reminded so repeated
// sweep runs do not re-mail agents for the same ticket inside the threshold
// window.
type ReminderMarker interface {
	// TryMark records a reminder for the ticket and returns true when no
	// marker existed yet. A false return means the ticket was already
	// reminded within the TTL window.
	TryMark(ctx context.Context, ticketID string, ttl time.Duration) (bool, error)
}

type redisReminderMarker struct {
	client *redis.Client
}

// NewRedisReminderMarker builds a redis-backed marker store.
func NewRedisReminderMarker(client *redis.Client) ReminderMarker {
	return &redisReminderMarker{client: client}
}

const reminderKeyPrefix = "reminder:ticket:"

func (m *redisReminderMarker) TryMark(ctx context.Context, ticketID string, ttl time.Duration) (bool, error) {
	return m.client.SetNX(ctx, reminderKeyPrefix+ticketID, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}
