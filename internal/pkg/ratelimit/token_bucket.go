package ratelimit

import (
	"sync/atomic"
	"time"
)

/*
補充在 Allow 時依經過時間計算，不需要背景 goroutine
current 與 lastRefilled 都用 CAS 更新
*/
type TokenBucket struct {
	LimiterConfig
	current      atomic.Int64
	lastRefilled atomic.Int64
	lastSeen     atomic.Int64
}

func NewTokenBucket(config LimiterConfig, now time.Time) *TokenBucket {
	t := &TokenBucket{LimiterConfig: config.normalized()}
	t.current.Store(int64(t.Capacity))
	t.lastRefilled.Store(now.UnixNano())
	t.lastSeen.Store(now.UnixNano())
	return t
}

func (t *TokenBucket) Allow(now time.Time) bool {
	t.refill(now)
	t.lastSeen.Store(now.UnixNano())
	for {
		current := t.current.Load()
		if current <= 0 {
			return false
		}
		if t.current.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

func (t *TokenBucket) Tokens(now time.Time) int {
	t.refill(now)
	return int(t.current.Load())
}

func (t *TokenBucket) refill(now time.Time) {
	interval := int64(t.RefillEvery)
	for {
		last := t.lastRefilled.Load()
		toAdd := (now.UnixNano() - last) / interval
		if toAdd <= 0 {
			return
		}
		if !t.lastRefilled.CompareAndSwap(last, last+toAdd*interval) {
			continue
		}
		for {
			current := t.current.Load()
			newTokens := current + toAdd
			if newTokens > int64(t.Capacity) {
				newTokens = int64(t.Capacity)
			}
			if t.current.CompareAndSwap(current, newTokens) {
				return
			}
		}
	}
}

// idle 已補滿且超過 IdleTTL 沒有請求
func (t *TokenBucket) idle(now time.Time) bool {
	if now.UnixNano()-t.lastSeen.Load() < int64(t.IdleTTL) {
		return false
	}
	return t.Tokens(now) >= t.Capacity
}
