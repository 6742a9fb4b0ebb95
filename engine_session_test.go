package q63

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestValidateSessionLifetime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg := env.register(t, "gina@example.com", "Gina", "password123")
	issuedAt := env.clock.Now()

	env.advance(29 * 24 * time.Hour)
	info, err := env.engine.ValidateSession(ctx, reg.Token)
	if err != nil {
		t.Fatalf("expected session valid at T+29d: %v", err)
	}
	if info.Email != "gina@example.com" {
		t.Fatalf("unexpected email %q", info.Email)
	}
	if !info.ExpiresAt.Equal(issuedAt.Add(30 * 24 * time.Hour)) {
		t.Fatalf("unexpected expiry %v", info.ExpiresAt)
	}

	env.advance(2 * 24 * time.Hour)
	if _, err := env.engine.ValidateSession(ctx, reg.Token); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized at T+31d, got %v", err)
	}
	if _, err := env.engine.ValidateSession(ctx, reg.Token); err != ErrUnauthorized {
		t.Fatalf("expected expired session to stay invalid, got %v", err)
	}
}

func TestValidateSessionEmbeddedExpiryDeletesKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg := env.register(t, "hank@example.com", "Hank", "password123")

	// Only the engine clock moves; the store still holds the key.
	env.clock.Advance(31 * 24 * time.Hour)
	if _, err := env.engine.ValidateSession(ctx, reg.Token); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if env.mr.Exists("session:" + reg.Token) {
		t.Fatalf("expected expired session key to be deleted")
	}
}

func TestValidateSessionRejectsMalformed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, token := range []string{
		"",
		"short",
		strings.Repeat("A", 64),
		strings.Repeat("g", 64),
		strings.Repeat("a", 65),
		"../" + strings.Repeat("a", 61),
	} {
		if _, err := env.engine.ValidateSession(ctx, token); err != ErrUnauthorized {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestValidateSessionUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.ValidateSession(context.Background(), strings.Repeat("ab", 32))
	if err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err.Error() != "Unauthorized. Please log in." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestConcurrentSessionsBothValid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg := env.register(t, "ivy@example.com", "Ivy", "password123")
	login, err := env.engine.Login(ctx, "ivy@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	for _, token := range []string{reg.Token, login.Token} {
		if _, err := env.engine.ValidateSession(ctx, token); err != nil {
			t.Fatalf("expected %s... to be valid: %v", token[:8], err)
		}
	}
}

func TestValidateSessionStoreUnavailable(t *testing.T) {
	env := newTestEnv(t)

	reg := env.register(t, "jack@example.com", "Jack", "password123")
	env.mr.Close()

	_, err := env.engine.ValidateSession(context.Background(), reg.Token)
	if err == nil || err == ErrUnauthorized {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
	if KindOf(err) != KindInternal {
		t.Fatalf("expected internal kind, got %v", KindOf(err))
	}
}

func TestValidateSessionMetrics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg := env.register(t, "kim@example.com", "Kim", "password123")
	_, _ = env.engine.ValidateSession(ctx, reg.Token)
	_, _ = env.engine.ValidateSession(ctx, "bogus")

	snap := env.engine.MetricsSnapshot()
	if snap.Counters[MetricSessionValidated] != 1 {
		t.Fatalf("expected 1 validated, got %d", snap.Counters[MetricSessionValidated])
	}
	if snap.Counters[MetricSessionRejected] != 1 {
		t.Fatalf("expected 1 rejected, got %d", snap.Counters[MetricSessionRejected])
	}

	var observed uint64
	for _, v := range snap.Histograms[MetricValidateLatency] {
		observed += v
	}
	if observed != 2 {
		t.Fatalf("expected 2 latency observations, got %d", observed)
	}
}
