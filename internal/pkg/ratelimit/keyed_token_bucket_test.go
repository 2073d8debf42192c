package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(capacity int, refill time.Duration) (*KeyedTokenBucket, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cfg := LimiterConfig{Capacity: capacity, RefillEvery: refill, IdleTTL: time.Minute}
	return newKeyedTokenBucket(cfg, clock.Now), clock
}

func TestKeyedTokenBucket_Capacity(t *testing.T) {
	limiter, _ := newTestLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow("customer:1"), "request %d", i+1)
	}
	require.False(t, limiter.Allow("customer:1"))

	// 不同 key 各自獨立
	require.True(t, limiter.Allow("customer:2"))
	require.Equal(t, 2, limiter.Len())
}

func TestKeyedTokenBucket_Refill(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Second)

	require.True(t, limiter.Allow("k"))
	require.True(t, limiter.Allow("k"))
	require.False(t, limiter.Allow("k"))

	clock.Advance(1100 * time.Millisecond)
	require.True(t, limiter.Allow("k"))
	require.False(t, limiter.Allow("k"))

	// 補充不超過容量
	clock.Advance(time.Hour)
	require.True(t, limiter.Allow("k"))
	require.True(t, limiter.Allow("k"))
	require.False(t, limiter.Allow("k"))
}

func TestKeyedTokenBucket_EvictIdle(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Second)

	require.True(t, limiter.Allow("idle"))
	clock.Advance(30 * time.Second)
	require.True(t, limiter.Allow("busy"))
	require.True(t, limiter.Allow("busy"))

	clock.Advance(31 * time.Second)
	require.Equal(t, 1, limiter.evictIdle())
	require.Equal(t, 1, limiter.Len())

	clock.Advance(time.Minute)
	require.Equal(t, 1, limiter.evictIdle())
	require.Zero(t, limiter.Len())
}

func TestKeyedTokenBucket_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(50, time.Hour)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 50, allowed.Load())
}

func TestKeyedTokenBucket_StopNoLeak(t *testing.T) {
	limiter := NewKeyedTokenBucket(&LimiterConfig{Capacity: 1, RefillEvery: time.Second, IdleTTL: 20 * time.Millisecond})
	require.True(t, limiter.Allow("a"))
	time.Sleep(50 * time.Millisecond)
	limiter.Stop()
	limiter.Stop()
}

func TestNewKeyedTokenBucket_Defaults(t *testing.T) {
	limiter := NewKeyedTokenBucket(&LimiterConfig{})
	defer limiter.Stop()
	require.Equal(t, GetDefaultLimiterConfig(), limiter.config)
}
