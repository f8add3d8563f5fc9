// Package ratelimit implements a fixed-window request throttle over a shared
// key-value counter store. Windows are aligned to the window boundary rather
// than sliding continuously.
//
// The limiter fails open: if the counter store is unreachable the check
// admits the request and logs the fault. Availability is preferred over
// strict enforcement; this is a deliberate trade-off, not a bug.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/forvaidya/icomment/internal/kv"
	"github.com/forvaidya/icomment/internal/metrics"
)

type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// ClassLimits is one row of the limit matrix: max requests per window for
// each action. Zero means always denied.
type ClassLimits struct {
	Read  int
	Write int
}

// Config is an immutable snapshot taken at construction. Reconfiguring at
// runtime means building a new Limiter, there is no field-level mutation.
type Config struct {
	Window time.Duration
	// Grace extends the counter TTL past the window so counters survive
	// clock skew at the boundary.
	Grace         time.Duration
	Authenticated ClassLimits
	Anonymous     ClassLimits
}

func DefaultConfig() Config {
	return Config{
		Window:        time.Minute,
		Grace:         30 * time.Second,
		Authenticated: ClassLimits{Read: 120, Write: 30},
		Anonymous:     ClassLimits{Read: 60, Write: 0},
	}
}

func (c Config) limit(action Action, authenticated bool) int {
	limits := c.Anonymous
	if authenticated {
		limits = c.Authenticated
	}
	if action == ActionWrite {
		return limits.Write
	}
	return limits.Read
}

type Result struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

type Limiter struct {
	store kv.Store
	cfg   Config
	log   *zap.Logger
	now   func() time.Time
}

func New(store kv.Store, cfg Config, log *zap.Logger) *Limiter {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &Limiter{store: store, cfg: cfg, log: log, now: time.Now}
}

// Check admits or denies one request for identity/action in the current
// window. The counter increment is a read-modify-write without
// compare-and-swap; concurrent checks in the same window can overshoot the
// limit by the degree of concurrency.
func (l *Limiter) Check(ctx context.Context, identity string, action Action, authenticated bool) Result {
	limit := l.cfg.limit(action, authenticated)
	windowStart := l.now().Truncate(l.cfg.Window)
	resetAt := windowStart.Add(l.cfg.Window)

	if limit <= 0 {
		// Nothing to count, the cell is closed.
		metrics.RateLimitDecisions.WithLabelValues(string(action), "denied").Inc()
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	key := counterKey(identity, action, windowStart)

	count, err := l.readCount(ctx, key)
	if err != nil {
		l.log.Warn("counter store unreachable, failing open",
			zap.String("identity", identity),
			zap.String("action", string(action)),
			zap.Error(err))
		metrics.RateLimitStoreFaults.Inc()
		metrics.RateLimitDecisions.WithLabelValues(string(action), "allowed").Inc()
		return Result{Allowed: true, Remaining: limit, ResetAt: resetAt}
	}

	allowed := count < limit
	if allowed {
		if err := l.store.Put(ctx, key, strconv.Itoa(count+1), l.cfg.Window+l.cfg.Grace); err != nil {
			l.log.Warn("counter store write failed",
				zap.String("identity", identity),
				zap.String("action", string(action)),
				zap.Error(err))
			metrics.RateLimitStoreFaults.Inc()
		}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	metrics.RateLimitDecisions.WithLabelValues(string(action), decision).Inc()

	return Result{Allowed: allowed, Remaining: remaining, ResetAt: resetAt}
}

// CheckMany runs one independent Check per action, in argument order. There
// is no atomicity across actions: a caller can be admitted on one action and
// denied on another within the same call.
func (l *Limiter) CheckMany(ctx context.Context, identity string, actions []Action, authenticated bool) map[Action]Result {
	results := make(map[Action]Result, len(actions))
	for _, action := range actions {
		results[action] = l.Check(ctx, identity, action, authenticated)
	}
	return results
}

// Reset clears the counter for the current window only. Historical windows
// expire on their own.
func (l *Limiter) Reset(ctx context.Context, identity string, action Action) error {
	windowStart := l.now().Truncate(l.cfg.Window)
	return l.store.Delete(ctx, counterKey(identity, action, windowStart))
}

func (l *Limiter) readCount(ctx context.Context, key string) (int, error) {
	val, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		// A mangled counter is treated as absent rather than poisoning the
		// window.
		return 0, nil
	}
	return count, nil
}

func counterKey(identity string, action Action, windowStart time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", identity, action, windowStart.UnixMilli())
}
