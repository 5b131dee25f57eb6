package gate

import (
	"context"
	"time"
)

// DefaultCooldown is the minimum wait between two accepted requests from
// the same identity unless configured otherwise.
const DefaultCooldown = 300 * time.Second

// Decision is the outcome of a check-and-reserve call. When Allowed is
// false, RetryAfter carries the remaining cooldown.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Ledger stores the last accepted-request timestamp per identity and
// performs the check-and-reserve atomically for that identity: of two
// concurrent calls inside the window, exactly one wins.
type Ledger interface {
	CheckAndReserve(ctx context.Context, identity string, now time.Time, window time.Duration) (Decision, error)
}

// Gate combines the credential allow-list with the cooldown ledger.
type Gate struct {
	creds    []Credential
	ledger   Ledger
	cooldown time.Duration
}

// New builds a gate over the given allow-list and ledger. A non-positive
// cooldown falls back to DefaultCooldown.
func New(creds []Credential, ledger Ledger, cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{creds: creds, ledger: ledger, cooldown: cooldown}
}

// Authenticate reports whether an exact identity/secret pair exists in the
// allow-list. Matching is literal and case-sensitive; first match wins.
// It never touches the ledger.
func (g *Gate) Authenticate(identity, secret string) bool {
	for _, c := range g.creds {
		if c.Identity == identity && c.Secret == secret {
			return true
		}
	}
	return false
}

// CheckAndReserve charges the identity's rate-limit slot. Only an allowed
// outcome writes to the ledger; a throttled caller's stored timestamp is
// left untouched.
func (g *Gate) CheckAndReserve(ctx context.Context, identity string, now time.Time) (Decision, error) {
	return g.ledger.CheckAndReserve(ctx, identity, now, g.cooldown)
}

// Cooldown exposes the configured window.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}
