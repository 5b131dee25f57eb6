package gate

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisLedger keeps the cooldown state in Redis so the gate stays correct
// across replicas. The reservation is a SET NX with the window as TTL,
// which makes check-and-reserve a single atomic command; the losing caller
// reads the remaining wait from PTTL. Key expiry means the identity passes
// again at elapsed >= window rather than strictly greater, one tick more
// permissive than the in-memory ledger.
type RedisLedger struct {
	client *redis.Client
	prefix string
}

// NewRedisLedger connects to Redis at addr and verifies the connection.
func NewRedisLedger(ctx context.Context, addr, password string, db int) (*RedisLedger, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisLedger{client: client, prefix: "cooldown:"}, nil
}

func (l *RedisLedger) Close() error {
	return l.client.Close()
}

// CheckAndReserve implements Ledger.
func (l *RedisLedger) CheckAndReserve(ctx context.Context, identity string, now time.Time, window time.Duration) (Decision, error) {
	key := l.prefix + identity
	reserved, err := l.client.SetNX(ctx, key, now.UnixMilli(), window).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("cooldown reserve: %w", err)
	}
	if reserved {
		return Decision{Allowed: true}, nil
	}

	ttl, err := l.client.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("cooldown ttl: %w", err)
	}
	if ttl <= 0 {
		// Expired between SETNX and PTTL; take the slot.
		reserved, err := l.client.SetNX(ctx, key, now.UnixMilli(), window).Result()
		if err != nil {
			return Decision{}, fmt.Errorf("cooldown reserve retry: %w", err)
		}
		if reserved {
			return Decision{Allowed: true}, nil
		}
		return Decision{RetryAfter: window}, nil
	}
	return Decision{RetryAfter: ttl}, nil
}

var _ Ledger = (*RedisLedger)(nil)
