// Package ratelimit enforces a per-identity daily request budget.
package ratelimit

import (
	"sync"
	"time"
)

const DefaultDailyLimit = 50

// Limiter counts accepted requests per identity per calendar day. Counters
// are incremented on admission (accepted attempts, not successful
// completions) and purged once their day key goes stale. Safe for concurrent
// use.
type Limiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
	now    func() time.Time
}

func New(dailyLimit int) *Limiter {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &Limiter{
		counts: make(map[string]int),
		limit:  dailyLimit,
		now:    time.Now,
	}
}

func (l *Limiter) key(identity, day string) string {
	return identity + "|" + day
}

// Allow admits a request for the identity, returning whether it may proceed
// and how many requests remain for the day. A rejected request does not
// advance the counter.
func (l *Limiter) Allow(identity string) (bool, int) {
	day := l.now().Format("2006-01-02")

	l.mu.Lock()
	defer l.mu.Unlock()

	l.purgeStaleLocked(day)

	key := l.key(identity, day)
	if l.counts[key] >= l.limit {
		return false, 0
	}

	l.counts[key]++
	return true, l.limit - l.counts[key]
}

// purgeStaleLocked drops counters from previous days.
func (l *Limiter) purgeStaleLocked(today string) {
	suffix := "|" + today
	for key := range l.counts {
		if len(key) < len(suffix) || key[len(key)-len(suffix):] != suffix {
			delete(l.counts, key)
		}
	}
}
