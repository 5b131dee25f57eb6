package gate

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger is the default in-process ledger: a mutex-guarded map from
// identity to the timestamp of its last accepted request. Entries are
// created on first accepted request and never removed; growth is bounded
// by the number of distinct identities in the allow-list.
type MemoryLedger struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{last: make(map[string]time.Time)}
}

// CheckAndReserve implements Ledger. The identity may pass again only once
// strictly more than window has elapsed since its last accepted request.
func (l *MemoryLedger) CheckAndReserve(ctx context.Context, identity string, now time.Time, window time.Duration) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.last[identity]; ok {
		elapsed := now.Sub(prev)
		if elapsed <= window {
			return Decision{RetryAfter: window - elapsed}, nil
		}
	}
	l.last[identity] = now
	return Decision{Allowed: true}, nil
}

var _ Ledger = (*MemoryLedger)(nil)
