// AngelaMos | 2026
// throttle.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/carterperez-dev/commerce-api/internal/config"
	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

func failsKey(email string) string { return "login:fails:" + email }
func lockKey(email string) string  { return "login:lock:" + email }

// Throttle counts failed login attempts per email and engages a
// timed lockout at the threshold. Its state lives only in the cache;
// on cache unavailability every check fails open, because an outage
// must degrade to unthrottled logins rather than a platform-wide
// lockout. Degraded operation is logged.
type Throttle struct {
	store       session.Store
	maxAttempts int64
	attemptTTL  time.Duration
	lockout     time.Duration
	now         func() time.Time
}

func NewThrottle(store session.Store, cfg config.ThrottleConfig) *Throttle {
	return &Throttle{
		store:       store,
		maxAttempts: int64(cfg.MaxAttempts),
		attemptTTL:  cfg.AttemptTTL,
		lockout:     cfg.LockoutDuration,
		now:         time.Now,
	}
}

// CheckLockout rejects with the remaining lock time while a lock is
// engaged. An expired lock record is deleted on sight and the attempt
// proceeds on credential correctness alone. The remaining time is
// recomputed from the lock start on every check, never stored.
func (t *Throttle) CheckLockout(ctx context.Context, email string) error {
	raw, err := t.store.Get(ctx, lockKey(email))
	if err != nil {
		if !errors.Is(err, core.ErrCacheMiss) {
			slog.Warn("lockout check degraded, failing open",
				"email", email,
				"error", err,
			)
		}
		return nil
	}

	var rec lockRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		slog.Warn("corrupt lock record, discarding", "email", email)
		t.deleteQuiet(ctx, lockKey(email))
		return nil
	}

	elapsed := t.now().Unix() - rec.LockedAt
	remaining := rec.Duration - elapsed

	if remaining <= 0 {
		t.deleteQuiet(ctx, lockKey(email))
		return nil
	}

	return core.LockedError(int(remaining/60), int(remaining%60))
}

// RecordFailure increments the attempt counter atomically and engages
// the lock at the threshold. The counter carries its own TTL so low
// counts self-heal without a successful login. On the threshold
// attempt it returns the lockout error so the caller can report the
// lock on the failure that caused it, not one attempt later.
func (t *Throttle) RecordFailure(ctx context.Context, email string) error {
	count, err := t.store.Incr(ctx, failsKey(email), t.attemptTTL)
	if err != nil {
		slog.Warn("failed-attempt counter unavailable, throttling disabled",
			"email", email,
			"error", err,
		)
		return nil
	}

	if count < t.maxAttempts {
		return nil
	}

	rec := lockRecord{
		LockedAt: t.now().Unix(),
		Duration: int64(t.lockout.Seconds()),
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		slog.Warn("failed to marshal lock record", "error", err)
		return nil
	}

	if err := t.store.Set(ctx, lockKey(email), string(raw), t.lockout); err != nil {
		slog.Warn("failed to engage lockout",
			"email", email,
			"error", err,
		)
		return nil
	}

	// counting restarts fresh once the lock expires
	t.deleteQuiet(ctx, failsKey(email))

	slog.Info("account locked after repeated failures",
		"email", email,
		"duration", t.lockout,
	)

	remaining := rec.Duration
	return core.LockedError(int(remaining/60), int(remaining%60))
}

// ClearOnSuccess deletes the attempt counter outright; a successful
// credential check resets the state machine to CLEAR.
func (t *Throttle) ClearOnSuccess(ctx context.Context, email string) {
	t.deleteQuiet(ctx, failsKey(email))
}

func (t *Throttle) deleteQuiet(ctx context.Context, key string) {
	if err := t.store.Delete(ctx, key); err != nil {
		slog.Warn("throttle record delete failed, TTL is the backstop",
			"key", key,
			"error", err,
		)
	}
}
