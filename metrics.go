package authsmith

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter.
type MetricID int

// Counter identifiers. Keep the histogram entries after metricCounterEnd.
const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterDuplicate
	MetricRegisterFailure
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginUnverified
	MetricChallengeIssued
	MetricChallengeConsumed
	MetricChallengeInvalidCode
	MetricChallengeExpired
	MetricChallengeAttemptsExceeded
	MetricFederatedSuccess
	MetricFederatedFailure
	MetricFederatedAccountCreated
	MetricNotificationFailure
	MetricTokenMinted
	metricCounterEnd
)

const metricIDCount = int(metricCounterEnd)

// paddedCounter avoids false sharing between adjacent counters.
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// latencyHistogram buckets verification latencies by power-of-two
// millisecond boundaries: <1ms, <2ms, <4ms, ... plus an overflow bucket.
type latencyHistogram struct {
	buckets [16]atomic.Uint64
	sum     atomic.Uint64
	count   atomic.Uint64
}

func (h *latencyHistogram) observe(d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	idx := 0
	for bound := int64(1); idx < len(h.buckets)-1; idx++ {
		if ms < bound {
			break
		}
		bound <<= 1
	}

	h.buckets[idx].Add(1)
	h.sum.Add(uint64(ms))
	h.count.Add(1)
}

// Metrics holds the engine's in-process counters. All methods are safe for
// concurrent use; a nil receiver is a no-op so callers never branch on the
// metrics-enabled flag.
type Metrics struct {
	counters      [metricIDCount]paddedCounter
	verifyLatency *latencyHistogram
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	m := &Metrics{}
	if cfg.EnableLatencyHistograms {
		m.verifyLatency = &latencyHistogram{}
	}
	return m
}

// Inc describes the inc operation and its observable behavior.
//
// Inc may return an error when input validation, dependency calls, or security checks fail.
// Inc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id < 0 || int(id) >= metricIDCount {
		return
	}
	m.counters[id].value.Add(1)
}

// ObserveVerifyLatency describes the observeverifylatency operation and its observable behavior.
//
// ObserveVerifyLatency may return an error when input validation, dependency calls, or security checks fail.
// ObserveVerifyLatency does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m == nil || m.verifyLatency == nil {
		return
	}
	m.verifyLatency.observe(d)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters             map[string]uint64
	VerifyLatencyBuckets []uint64
	VerifyLatencySumMS   uint64
	VerifyLatencyCount   uint64
}

var metricNames = [metricIDCount]string{
	MetricRegisterSuccess:           "register_success",
	MetricRegisterDuplicate:         "register_duplicate",
	MetricRegisterFailure:           "register_failure",
	MetricLoginSuccess:              "login_success",
	MetricLoginFailure:              "login_failure",
	MetricLoginUnverified:           "login_unverified",
	MetricChallengeIssued:           "challenge_issued",
	MetricChallengeConsumed:         "challenge_consumed",
	MetricChallengeInvalidCode:      "challenge_invalid_code",
	MetricChallengeExpired:          "challenge_expired",
	MetricChallengeAttemptsExceeded: "challenge_attempts_exceeded",
	MetricFederatedSuccess:          "federated_login_success",
	MetricFederatedFailure:          "federated_login_failure",
	MetricFederatedAccountCreated:   "federated_account_created",
	MetricNotificationFailure:       "notification_failure",
	MetricTokenMinted:               "token_minted",
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters: make(map[string]uint64, metricIDCount),
	}
	if m == nil {
		return snap
	}

	for id := 0; id < metricIDCount; id++ {
		snap.Counters[metricNames[id]] = m.counters[id].value.Load()
	}

	if m.verifyLatency != nil {
		snap.VerifyLatencyBuckets = make([]uint64, len(m.verifyLatency.buckets))
		for i := range m.verifyLatency.buckets {
			snap.VerifyLatencyBuckets[i] = m.verifyLatency.buckets[i].Load()
		}
		snap.VerifyLatencySumMS = m.verifyLatency.sum.Load()
		snap.VerifyLatencyCount = m.verifyLatency.count.Load()
	}

	return snap
}
