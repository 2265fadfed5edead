package access

import (
	"context"
	"fmt"
	"time"

	"ai-chat-be/internal/pkg/apperror"

	"github.com/redis/go-redis/v9"
)

// Verifier enforces the daily turn quota per user. Counters live in Redis
// keyed by user and UTC day, expiring on their own after the day rolls
// over.
type Verifier struct {
	client     *redis.Client
	dailyLimit int
}

func NewVerifier(client *redis.Client, dailyLimit int) *Verifier {
	return &Verifier{
		client:     client,
		dailyLimit: dailyLimit,
	}
}

// ConsumeTurn counts one turn against the user's daily quota. Returns
// Forbidden once the limit is exhausted. A limit of zero or below
// disables the quota entirely.
func (v *Verifier) ConsumeTurn(ctx context.Context, userID string) error {
	if v.dailyLimit <= 0 || v.client == nil {
		return nil
	}

	key := fmt.Sprintf("chat:quota:%s:%s", userID, time.Now().UTC().Format("2006-01-02"))

	count, err := v.client.Incr(ctx, key).Result()
	if err != nil {
		return apperror.Persistence("failed to update turn quota", err)
	}
	if count == 1 {
		// First turn of the day sets the expiry.
		v.client.Expire(ctx, key, 25*time.Hour)
	}

	if count > int64(v.dailyLimit) {
		return apperror.Forbidden(fmt.Sprintf("daily turn limit of %d reached", v.dailyLimit))
	}
	return nil
}

// Remaining reports how many turns the user has left today.
func (v *Verifier) Remaining(ctx context.Context, userID string) (int, error) {
	if v.dailyLimit <= 0 || v.client == nil {
		return -1, nil
	}

	key := fmt.Sprintf("chat:quota:%s:%s", userID, time.Now().UTC().Format("2006-01-02"))
	count, err := v.client.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		return 0, apperror.Persistence("failed to read turn quota", err)
	}

	remaining := v.dailyLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
