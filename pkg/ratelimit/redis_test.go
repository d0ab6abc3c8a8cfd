package ratelimit

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestAllowFailsOpenWhenRedisUnavailable(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	})
	limiter := NewRedisRateLimiter(client, "test")

	allowed, info := limiter.Allow("user", Rate{Requests: 5, Window: time.Minute})
	if !allowed {
		t.Fatal("Allow() = false, want fail open when redis is unreachable")
	}
	if info.Limit != 5 {
		t.Errorf("info.Limit = %d, want 5", info.Limit)
	}
	if len(hook.Entries) == 0 {
		t.Error("fail-open path left no log entry")
	}
}
