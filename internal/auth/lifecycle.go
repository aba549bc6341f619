// AngelaMos | 2026
// lifecycle.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/commerce-api/internal/config"
	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/notify"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

func cooldownKey(email string) string { return "pwreset:cooldown:" + email }

// Lifecycle manages the one-time credential tokens: password reset,
// email verification, and account activation. Every token moves
// ISSUED -> CONSUMED or ISSUED -> EXPIRED exactly once; there is no
// reuse on any path.
type Lifecycle struct {
	repo     Repository
	users    UserProvider
	store    session.Store
	sessions *session.Manager
	mailer   notify.Sender
	cooldown time.Duration
	tokenTTL time.Duration
	baseURL  string
	now      func() time.Time
}

func NewLifecycle(
	repo Repository,
	users UserProvider,
	store session.Store,
	sessions *session.Manager,
	mailer notify.Sender,
	cfg config.ResetConfig,
	baseURL string,
) *Lifecycle {
	return &Lifecycle{
		repo:     repo,
		users:    users,
		store:    store,
		sessions: sessions,
		mailer:   mailer,
		cooldown: cfg.Cooldown,
		tokenTTL: cfg.TokenTTL,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// IssuePasswordReset generates an opaque token, stores its hash with an
// expiry on the user row, and mails the raw token. A per-email cooldown
// limits issue frequency. Unknown addresses succeed silently so the
// endpoint does not confirm account existence.
func (l *Lifecycle) IssuePasswordReset(
	ctx context.Context,
	email string,
) error {
	if err := l.checkCooldown(ctx, email); err != nil {
		return err
	}

	user, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.Info("password reset requested for unknown email",
				"email", email,
			)
			return nil
		}
		return fmt.Errorf("issue reset: %w", err)
	}

	token, err := core.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("issue reset: %w", err)
	}

	expiresAt := l.now().Add(l.tokenTTL)
	if err := l.repo.SetResetToken(ctx, user.ID, core.HashToken(token), expiresAt); err != nil {
		return fmt.Errorf("issue reset: %w", err)
	}

	// cooldown marker is advisory; a cache fault disables only this
	// protection, never the flow
	if err := l.store.Set(ctx, cooldownKey(email), "1", l.cooldown); err != nil {
		slog.Warn("reset cooldown marker write failed",
			"email", email,
			"error", err,
		)
	}

	msg := notify.PasswordResetMessage(user.Email, l.baseURL, token)
	if err := l.mailer.Send(ctx, msg); err != nil {
		return core.DependencyError(
			fmt.Errorf("send reset email: %w", err),
		)
	}

	return nil
}

// ConsumePasswordReset trades a valid token for a new credential. An
// expired token is cleared as cleanup before the rejection, so the
// dangling hash does not outlive its usefulness.
func (l *Lifecycle) ConsumePasswordReset(
	ctx context.Context,
	token, newPassword string,
) error {
	cred, err := l.repo.FindByResetTokenHash(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.TokenInvalidError()
		}
		return fmt.Errorf("consume reset: %w", err)
	}

	if cred.Expired(l.now()) {
		if clearErr := l.repo.ClearResetToken(ctx, cred.UserID); clearErr != nil {
			slog.Warn("failed to clear expired reset token",
				"user_id", cred.UserID,
				"error", clearErr,
			)
		}
		return core.TokenExpiredError()
	}

	passwordHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("consume reset: %w", err)
	}

	err = l.repo.UpdatePasswordClearToken(ctx, cred.UserID, passwordHash)
	if err != nil {
		// a concurrent consume won the row update; the token is spent
		if errors.Is(err, core.ErrTokenInvalid) {
			return core.TokenInvalidError()
		}
		return fmt.Errorf("consume reset: %w", err)
	}

	l.refreshProjection(ctx, cred.UserID)
	return nil
}

// VerifyEmail flips the verification flag for the user named in the
// link. Already-verified accounts are rejected as already done.
func (l *Lifecycle) VerifyEmail(
	ctx context.Context,
	userID string,
) (*UserInfo, error) {
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := l.repo.MarkEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, core.ConflictError("email is already verified")
		}
		return nil, err
	}

	user.EmailVerified = true
	l.sessions.Refresh(ctx, user.ToActor(), "")

	return user, nil
}

// Activate flips the activation flag (and verification, since the link
// arrived by email) for the user named in the link. The caller reissues
// a signed session reflecting the new state.
func (l *Lifecycle) Activate(
	ctx context.Context,
	userID string,
) (*UserInfo, error) {
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := l.repo.MarkActivated(ctx, userID); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, core.ConflictError("account is already activated")
		}
		return nil, err
	}

	user.Activated = true
	user.EmailVerified = true
	l.sessions.Refresh(ctx, user.ToActor(), "")

	return user, nil
}

func (l *Lifecycle) checkCooldown(ctx context.Context, email string) error {
	_, err := l.store.Get(ctx, cooldownKey(email))
	if err == nil {
		return core.ConflictError(
			"a reset email was sent recently, try again in a minute",
		)
	}

	if !errors.Is(err, core.ErrCacheMiss) {
		slog.Warn("reset cooldown check degraded, proceeding",
			"email", email,
			"error", err,
		)
	}

	return nil
}

func (l *Lifecycle) refreshProjection(ctx context.Context, userID string) {
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		l.sessions.Invalidate(ctx, userID, "")
		return
	}

	l.sessions.Refresh(ctx, user.ToActor(), "")
}
