package gate

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testGate(cooldown time.Duration) *Gate {
	creds := []Credential{
		{Identity: "alice", Secret: "1234"},
		{Identity: "bob", Secret: "5678"},
	}
	return New(creds, NewMemoryLedger(), cooldown)
}

func TestAuthenticate(t *testing.T) {
	g := testGate(time.Minute)

	tests := []struct {
		name     string
		identity string
		secret   string
		want     bool
	}{
		{"known pair", "alice", "1234", true},
		{"wrong secret", "alice", "9999", false},
		{"unknown identity", "carol", "1234", false},
		{"empty identity", "", "1234", false},
		{"empty secret", "alice", "", false},
		{"case sensitive", "Alice", "1234", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.Authenticate(tc.identity, tc.secret); got != tc.want {
				t.Fatalf("Authenticate(%q, %q) = %v, want %v", tc.identity, tc.secret, got, tc.want)
			}
		})
	}
}

func TestAuthenticateFirstMatchWins(t *testing.T) {
	g := New([]Credential{
		{Identity: "alice", Secret: "first"},
		{Identity: "alice", Secret: "second"},
	}, NewMemoryLedger(), time.Minute)

	if !g.Authenticate("alice", "first") {
		t.Fatal("first duplicate entry should authenticate")
	}
	if !g.Authenticate("alice", "second") {
		t.Fatal("second duplicate entry should authenticate too")
	}
}

func TestCheckAndReserveSequence(t *testing.T) {
	const window = 300 * time.Second
	g := testGate(window)
	ctx := context.Background()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	first, err := g.CheckAndReserve(ctx, "alice", base)
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if !first.Allowed {
		t.Fatal("first request should be allowed")
	}

	second, err := g.CheckAndReserve(ctx, "alice", base.Add(time.Second))
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if second.Allowed {
		t.Fatal("immediate second request should be throttled")
	}
	if second.RetryAfter != window-time.Second {
		t.Fatalf("RetryAfter = %v, want %v", second.RetryAfter, window-time.Second)
	}

	// A throttled attempt must not push the stored timestamp forward.
	third, err := g.CheckAndReserve(ctx, "alice", base.Add(window).Add(time.Second))
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if !third.Allowed {
		t.Fatal("request after the cooldown window should be allowed")
	}
}

func TestCheckAndReserveExactWindowBoundary(t *testing.T) {
	const window = 300 * time.Second
	g := testGate(window)
	ctx := context.Background()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	if d, _ := g.CheckAndReserve(ctx, "alice", base); !d.Allowed {
		t.Fatal("first request should be allowed")
	}
	// elapsed == window is still inside the cooldown.
	d, err := g.CheckAndReserve(ctx, "alice", base.Add(window))
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if d.Allowed {
		t.Fatal("request at exactly the window boundary should be throttled")
	}
	if d.RetryAfter != 0 {
		t.Fatalf("RetryAfter = %v, want 0", d.RetryAfter)
	}
}

func TestCheckAndReserveIndependentIdentities(t *testing.T) {
	g := testGate(time.Minute)
	ctx := context.Background()
	now := time.Now()

	if d, _ := g.CheckAndReserve(ctx, "alice", now); !d.Allowed {
		t.Fatal("alice should be allowed")
	}
	if d, _ := g.CheckAndReserve(ctx, "bob", now); !d.Allowed {
		t.Fatal("bob should not be charged for alice's slot")
	}
}

func TestCheckAndReserveConcurrentSingleWinner(t *testing.T) {
	g := testGate(time.Minute)
	ctx := context.Background()
	now := time.Now()

	const workers = 32
	var wg sync.WaitGroup
	allowed := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := g.CheckAndReserve(ctx, "alice", now)
			if err != nil {
				t.Errorf("CheckAndReserve returned error: %v", err)
				return
			}
			if d.Allowed {
				allowed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(allowed)

	wins := 0
	for range allowed {
		wins++
	}
	if wins != 1 {
		t.Fatalf("%d concurrent requests won the reservation, want exactly 1", wins)
	}
}

func TestParseCredentials(t *testing.T) {
	input := "alice,1234\nbob,5678\nmalformed\ncarol,91011,extra\n"
	creds := parseCredentials(strings.NewReader(input), zerolog.Nop())
	if len(creds) != 3 {
		t.Fatalf("parsed %d credentials, want 3", len(creds))
	}
	if creds[0] != (Credential{Identity: "alice", Secret: "1234"}) {
		t.Fatalf("unexpected first credential: %+v", creds[0])
	}
	if creds[2].Identity != "carol" || creds[2].Secret != "91011" {
		t.Fatalf("extra fields should be ignored, got %+v", creds[2])
	}
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	creds := LoadCredentials("/nonexistent/credentials.csv", zerolog.Nop())
	if creds != nil {
		t.Fatalf("expected nil allow-list for a missing file, got %d entries", len(creds))
	}
	g := New(creds, NewMemoryLedger(), time.Minute)
	if g.Authenticate("alice", "1234") {
		t.Fatal("empty allow-list must authenticate nobody")
	}
}
