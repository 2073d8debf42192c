package ratelimit

import (
	"sync"
	"time"
)

// Limiter 依 key 限流，例如每位顧客一個 bucket
type Limiter interface {
	Allow(key string) bool
}

var _ Limiter = (*KeyedTokenBucket)(nil)

/*
每個 key 第一次出現時建立 bucket
背景 goroutine 定期移除閒置的 bucket
請使用 defer 呼叫 Stop()
*/
type KeyedTokenBucket struct {
	config  LimiterConfig
	mu      sync.Mutex
	buckets map[string]*TokenBucket
	now     func() time.Time
	cancel  chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewKeyedTokenBucket(config *LimiterConfig) *KeyedTokenBucket {
	cfg := GetDefaultLimiterConfig()
	if config != nil {
		cfg = config.normalized()
	}
	k := newKeyedTokenBucket(cfg, time.Now)
	go k.background()
	return k
}

func newKeyedTokenBucket(config LimiterConfig, now func() time.Time) *KeyedTokenBucket {
	return &KeyedTokenBucket{
		config:  config.normalized(),
		buckets: make(map[string]*TokenBucket),
		now:     now,
		cancel:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (k *KeyedTokenBucket) Allow(key string) bool {
	now := k.now()
	k.mu.Lock()
	bucket, ok := k.buckets[key]
	if !ok {
		bucket = NewTokenBucket(k.config, now)
		k.buckets[key] = bucket
	}
	k.mu.Unlock()
	return bucket.Allow(now)
}

func (k *KeyedTokenBucket) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

func (k *KeyedTokenBucket) evictIdle() int {
	now := k.now()
	k.mu.Lock()
	defer k.mu.Unlock()
	evicted := 0
	for key, bucket := range k.buckets {
		if bucket.idle(now) {
			delete(k.buckets, key)
			evicted++
		}
	}
	return evicted
}

func (k *KeyedTokenBucket) background() {
	defer close(k.done)
	ticker := time.NewTicker(k.config.IdleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-k.cancel:
			return
		case <-ticker.C:
			k.evictIdle()
		}
	}
}

// Stop 等待背景 goroutine 結束，可重複呼叫
func (k *KeyedTokenBucket) Stop() {
	k.once.Do(func() {
		close(k.cancel)
	})
	<-k.done
}
