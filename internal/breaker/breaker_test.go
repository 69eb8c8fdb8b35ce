package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestBreaker(threshold int, timeout time.Duration) (*Breaker, *time.Time) {
	b := New("llm", threshold, timeout, nil)
	now := time.Now()
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerStartsClosed(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)
	assert.Equal(t, Closed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, Closed, b.State())
	assert.True(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, Open, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerHalfOpenAfterTimeout(t *testing.T) {
	b, now := newTestBreaker(1, time.Minute)
	b.RecordFailure()
	assert.False(t, b.Allow())

	*now = now.Add(61 * time.Second)
	// First call after the timeout is the probe.
	assert.True(t, b.Allow())
	assert.Equal(t, HalfOpen, b.State())
	// Concurrent calls wait for the probe's outcome.
	assert.False(t, b.Allow())
}

func TestBreakerProbeSuccessCloses(t *testing.T) {
	b, now := newTestBreaker(1, time.Minute)
	b.RecordFailure()
	*now = now.Add(2 * time.Minute)
	assert.True(t, b.Allow())

	b.RecordSuccess()
	assert.Equal(t, Closed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	b, now := newTestBreaker(5, time.Minute)
	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	*now = now.Add(2 * time.Minute)
	assert.True(t, b.Allow())

	// A single failure in half-open reopens regardless of threshold.
	b.RecordFailure()
	assert.Equal(t, Open, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, Closed, b.State())
}

func TestBreakersShareStateViaStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	b1 := New("llm", 1, time.Minute, store)
	b1.now = func() time.Time { return now }
	b2 := New("llm", 1, time.Minute, store)
	b2.now = func() time.Time { return now }

	b1.RecordFailure()
	assert.Equal(t, Open, b2.State())
	assert.False(t, b2.Allow())
}

func TestBreakersWithDistinctNamesAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	llm := New("llm", 1, time.Minute, store)
	s3 := New("s3", 1, time.Minute, store)

	llm.RecordFailure()
	assert.Equal(t, Open, llm.State())
	assert.Equal(t, Closed, s3.State())
	assert.True(t, s3.Allow())
}
