package authsmith

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := newMetrics(MetricsConfig{Enabled: false})
	if m != nil {
		t.Fatal("expected nil metrics when disabled")
	}

	m.Inc(MetricLoginSuccess)
	m.ObserveVerifyLatency(time.Millisecond)

	snap := m.Snapshot()
	if len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap.Counters)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := newMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricRegisterFailure)
	m.Inc(MetricID(-1))  // out of range, ignored
	m.Inc(MetricID(999)) // out of range, ignored

	snap := m.Snapshot()
	if snap.Counters["login_success"] != 2 {
		t.Fatalf("login_success = %d", snap.Counters["login_success"])
	}
	if snap.Counters["register_failure"] != 1 {
		t.Fatalf("register_failure = %d", snap.Counters["register_failure"])
	}
	if snap.Counters["token_minted"] != 0 {
		t.Fatalf("token_minted = %d", snap.Counters["token_minted"])
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := newMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricChallengeConsumed)
			}
		}()
	}
	wg.Wait()

	if got := m.Snapshot().Counters["challenge_consumed"]; got != workers*perWorker {
		t.Fatalf("challenge_consumed = %d, want %d", got, workers*perWorker)
	}
}

func TestMetricsLatencyHistogram(t *testing.T) {
	m := newMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.ObserveVerifyLatency(500 * time.Microsecond) // bucket 0 (<1ms)
	m.ObserveVerifyLatency(3 * time.Millisecond)   // bucket 2 (<4ms)
	m.ObserveVerifyLatency(time.Hour)              // overflow bucket

	snap := m.Snapshot()
	if snap.VerifyLatencyCount != 3 {
		t.Fatalf("count = %d", snap.VerifyLatencyCount)
	}
	if snap.VerifyLatencyBuckets[0] != 1 {
		t.Fatalf("bucket 0 = %d", snap.VerifyLatencyBuckets[0])
	}
	if snap.VerifyLatencyBuckets[2] != 1 {
		t.Fatalf("bucket 2 = %d", snap.VerifyLatencyBuckets[2])
	}
	if snap.VerifyLatencyBuckets[len(snap.VerifyLatencyBuckets)-1] != 1 {
		t.Fatalf("overflow bucket = %d", snap.VerifyLatencyBuckets[len(snap.VerifyLatencyBuckets)-1])
	}
}

func TestEngineCountsOperations(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	notifier := &mockNotifier{}
	engine := newTestEngine(t, rdb, newMockAccountStore(), notifier)
	ctx := context.Background()

	result, err := engine.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := engine.VerifyEmail(ctx, result.AccountID, notifier.lastCode(t).code); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "wrongpass9"); err == nil {
		t.Fatal("expected failed login")
	}
	if _, err := engine.Login(ctx, "alice@example.com", "password1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	expectations := map[string]uint64{
		"register_success":   1,
		"challenge_issued":   1,
		"challenge_consumed": 1,
		"login_failure":      1,
		"login_success":      1,
	}
	for name, want := range expectations {
		if got := snap.Counters[name]; got != want {
			t.Fatalf("%s = %d, want %d", name, got, want)
		}
	}
	if snap.Counters["token_minted"] < 2 {
		t.Fatalf("token_minted = %d, want >= 2", snap.Counters["token_minted"])
	}
}
