package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/uglydojo/q63"
	"github.com/uglydojo/q63/internal/stores"
	"github.com/uglydojo/q63/session"
)

type accountState struct {
	email string
	token string
}

func main() {
	var (
		accounts    = pflag.Int("accounts", 10000, "number of accounts and sessions to seed")
		concurrency = pflag.Int("concurrency", 256, "number of concurrent workers")
		ops         = pflag.Int("ops", 200000, "operations per phase (validate + check-in)")
		redisAddr   = pflag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = pflag.String("prefix", "lt", "store key prefix")
	)
	pflag.Parse()

	if *accounts <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := q63.DefaultConfig()
	cfg.Store.KeyPrefix = *prefix
	engine, err := q63.New().
		WithConfig(cfg).
		WithRedis(client).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	// Seeding writes records directly; registering through the engine would
	// spend the whole run in PBKDF2.
	kv := stores.NewRedisStore(client, *prefix)
	accountStore := stores.NewAccountStore(kv)
	sessions := session.NewStore(kv, cfg.Session.TTL, nil)

	states := make([]accountState, *accounts)
	fmt.Printf("seeding %d accounts...\n", *accounts)
	startSeed := time.Now()
	for i := 0; i < *accounts; i++ {
		email := fmt.Sprintf("user-%d@loadtest.invalid", i)
		if err := accountStore.Put(ctx, seedAccount(email)); err != nil {
			fmt.Fprintf(os.Stderr, "seed account failed: %v\n", err)
			os.Exit(1)
		}
		token, _, err := sessions.Issue(ctx, email)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue session failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = accountState{email: email, token: token}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	validateStats := runPhase(states, *ops, *concurrency, 7919, func(r *rand.Rand, state *accountState) error {
		_, err := engine.ValidateSession(ctx, state.token)
		return err
	})
	checkInStats := runPhase(states, *ops, *concurrency, 6151, func(r *rand.Rand, state *accountState) error {
		_, err := engine.UpdateProgress(ctx, state.email, 1+r.Intn(q63.MaxDay), randomPractices(r))
		return err
	})

	fmt.Println("---- results ----")
	printStats("validate", validateStats)
	printStats("check-in", checkInStats)
}

// runPhase spreads ops calls of op over concurrency workers, each picking a
// random account. Check-ins on one account race; the store keeps the last
// write, which is the behavior under test.
func runPhase(states []accountState, ops, concurrency int, seed int64, op func(*rand.Rand, *accountState) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				t0 := time.Now()
				err := op(r, &states[idx])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func seedAccount(email string) *stores.Account {
	return &stores.Account{
		Email:        email,
		Name:         "Load Test",
		PasswordHash: "unused",
		Salt:         "unused",
		CreatedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func randomPractices(r *rand.Rand) map[string]any {
	out := make(map[string]any, len(q63.Practices))
	for _, p := range q63.Practices {
		out[p] = r.Intn(2) == 1
	}
	return out
}
