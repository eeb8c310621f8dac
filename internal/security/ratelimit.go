// Package security implements the cross-cutting envelope every request
// passes through: rate limiting, input sanitation, audit ingestion, and
// abuse detection.
package security

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Family groups endpoints that should share a rate budget, distinct
// from the fine-grained per-route path.
type Family string

const (
	FamilyAuth        Family = "auth"
	FamilyTrade       Family = "trade"
	FamilyCombat      Family = "combat"
	FamilyMessages    Family = "messages"
	FamilyGovernance  Family = "governance"
	FamilyDefault     Family = "default"
)

// RateLimiter holds one token bucket per (account-or-ip, family) key,
// generalized from infrastructure/middleware/ratelimit.go's single
// per-key bucket into a two-dimensional key so one caller's trade
// activity never starves their own combat budget.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	budgets  map[Family]familyBudget
	def      familyBudget
}

type familyBudget struct {
	limit int
	window time.Duration
	burst int
}

// NewRateLimiter builds a limiter with a default budget (requests per
// window) applied to every family without an explicit override.
func NewRateLimiter(defaultRequests int, defaultWindow time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		budgets:  make(map[Family]familyBudget),
		def:      budgetOf(defaultRequests, defaultWindow),
	}
}

func budgetOf(requests int, window time.Duration) familyBudget {
	if window <= 0 {
		window = time.Second
	}
	burst := requests
	if burst < 1 {
		burst = 1
	}
	return familyBudget{limit: requests, window: window, burst: burst}
}

// SetFamilyBudget overrides the default budget for one family.
func (rl *RateLimiter) SetFamilyBudget(family Family, requests int, window time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.budgets[family] = budgetOf(requests, window)
}

// Allow reports whether a request for key (an account id or client IP)
// within family is within budget, lazily creating that key's bucket on
// first use.
func (rl *RateLimiter) Allow(key string, family Family) bool {
	return rl.limiter(key, family).Allow()
}

func (rl *RateLimiter) limiter(key string, family Family) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	composite := string(family) + ":" + key
	if l, ok := rl.limiters[composite]; ok {
		return l
	}
	budget, ok := rl.budgets[family]
	if !ok {
		budget = rl.def
	}
	perSecond := float64(budget.limit) / budget.window.Seconds()
	l := rate.NewLimiter(rate.Limit(perSecond), budget.burst)
	rl.limiters[composite] = l
	return l
}

// LimiterCount returns the number of distinct (key, family) buckets
// currently tracked, surfaced for tests and operator diagnostics.
func (rl *RateLimiter) LimiterCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
