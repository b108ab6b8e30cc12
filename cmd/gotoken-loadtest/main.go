// Command gotoken-loadtest measures issue, verify and refresh throughput and latency
// of an in-process goToken.Service under concurrent load.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/internal/rate"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		tokens      = flag.Int("tokens", 10000, "number of tokens to seed for verify and refresh")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (issue + verify + refresh)")
		algorithm   = flag.String("algorithm", "HS256", "signing algorithm: HS256, HS384, HS512")
		latency     = flag.Bool("latency-histogram", true, "record the verify latency histogram")
		limit       = flag.Bool("limit-refresh", false, "pass every refresh through the redis rate limiter")
		redisAddr   = flag.String("redis-addr", "", "redis address for -limit-refresh; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *tokens <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "tokens, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	alg, err := goToken.ParseAlgorithm(*algorithm)
	if err != nil || alg == goToken.AlgEdDSA {
		fmt.Fprintf(os.Stderr, "unsupported algorithm %q for load test\n", *algorithm)
		os.Exit(2)
	}

	svc, err := goToken.New().
		WithSigningKey([]byte("gotoken-loadtest-signing-key-0123456789")).
		WithAlgorithm(alg).
		WithLatencyHistograms(*latency).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	var limiter *rate.Limiter
	if *limit {
		client, cleanup, err := openRedis(*redisAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		// Budget large enough that the limiter is measured, not hit.
		limiter = rate.New(client, rate.Config{RefreshLimit: *ops + 1, RefreshWindow: time.Hour})
	}

	seeded := make([]string, *tokens)
	fmt.Printf("seeding %d tokens...\n", *tokens)
	startSeed := time.Now()
	for i := range seeded {
		token, err := svc.Issue(claimsFor(i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue failed: %v\n", err)
			os.Exit(1)
		}
		seeded[i] = token
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	ctx := context.Background()
	issueStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand, _ int) error {
		_, err := svc.Issue(claimsFor(r.Intn(*tokens)))
		return err
	})
	verifyStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand, _ int) error {
		_, err := svc.Verify(seeded[r.Intn(len(seeded))])
		return err
	})
	refreshStats := runPhase(*ops, *concurrency, 4099, func(r *rand.Rand, worker int) error {
		if limiter != nil {
			if err := limiter.Allow(ctx, rate.OpRefresh, "worker-"+strconv.Itoa(worker)); err != nil {
				return err
			}
		}
		_, err := svc.Refresh(seeded[r.Intn(len(seeded))])
		return err
	})

	fmt.Println("---- results ----")
	printStats("issue", issueStats)
	printStats("verify", verifyStats)
	printStats("refresh", refreshStats)

	snap := svc.MetricsSnapshot()
	fmt.Printf("counters: issued=%d verified=%d rejected=%d refreshed=%d\n",
		snap.Counters[goToken.MetricIssueSuccess],
		snap.Counters[goToken.MetricVerifySuccess],
		snap.Counters[goToken.MetricVerifyFailure],
		snap.Counters[goToken.MetricRefreshSuccess],
	)
}

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Join(rate.ErrRedisUnavailable, err)
	}
	fmt.Printf("using redis at %s\n", addr)
	return client, func() { _ = client.Close() }, nil
}

func runPhase(ops, concurrency int, seedStride int64, op func(r *rand.Rand, worker int) error) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seedStride))
			local := make([]time.Duration, 0, ops/concurrency+1)
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					break
				}
				t0 := time.Now()
				err := op(r, worker)
				local = append(local, time.Since(t0))
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
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

func claimsFor(i int) goToken.Claims {
	return goToken.Claims{
		"sub":  "user-" + strconv.Itoa(i),
		"role": "member",
		"tid":  strconv.Itoa(i % 16),
	}
}
