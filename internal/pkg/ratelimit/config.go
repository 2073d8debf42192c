package ratelimit

import "time"

type LimiterConfig struct {
	Capacity    int
	RefillEvery time.Duration // 每隔多久補充 1 個 token
	IdleTTL     time.Duration // 超過此時間沒有請求且已補滿的 bucket 會被移除
}

func (l *LimiterConfig) SetCapacity(capacity int) {
	l.Capacity = capacity
}

func (l *LimiterConfig) SetRefillEvery(d time.Duration) {
	l.RefillEvery = d
}

func (l *LimiterConfig) SetIdleTTL(d time.Duration) {
	l.IdleTTL = d
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity:    5,
		RefillEvery: 2 * time.Second,
		IdleTTL:     10 * time.Minute,
	}
}

func (l LimiterConfig) normalized() LimiterConfig {
	def := GetDefaultLimiterConfig()
	if l.Capacity <= 0 {
		l.Capacity = def.Capacity
	}
	if l.RefillEvery <= 0 {
		l.RefillEvery = def.RefillEvery
	}
	if l.IdleTTL <= 0 {
		l.IdleTTL = def.IdleTTL
	}
	return l
}
