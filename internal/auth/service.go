// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/commerce-api/internal/core"
	"github.com/carterperez-dev/commerce-api/internal/notify"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

// UserInfo is the account view the auth flows operate on. The user
// package implements UserProvider over its own entity so that auth
// never depends on persistence details.
type UserInfo struct {
	ID                string
	Email             string
	FirstName         string
	LastName          string
	PasswordHash      string
	RoleID            string
	RoleName          string
	EmailVerified     bool
	Activated         bool
	ResetTokenExpires *time.Time
}

func (u *UserInfo) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *UserInfo) ToActor() *session.Actor {
	return &session.Actor{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		RoleID:        u.RoleID,
		RoleName:      u.RoleName,
		EmailVerified: u.EmailVerified,
		Activated:     u.Activated,
	}
}

type CreateCustomerParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Gender       *string
}

type UserProvider interface {
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	CreateCustomer(
		ctx context.Context,
		params CreateCustomerParams,
	) (*UserInfo, error)
	HardDelete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	users     UserProvider
	jwt       *JWTManager
	throttle  *Throttle
	lifecycle *Lifecycle
	sessions  *session.Manager
	mailer    notify.Sender
	baseURL   string
	tokenTTL  time.Duration
}

func NewService(
	users UserProvider,
	jwt *JWTManager,
	throttle *Throttle,
	lifecycle *Lifecycle,
	sessions *session.Manager,
	mailer notify.Sender,
	baseURL string,
	tokenTTL time.Duration,
) *Service {
	return &Service{
		users:     users,
		jwt:       jwt,
		throttle:  throttle,
		lifecycle: lifecycle,
		sessions:  sessions,
		mailer:    mailer,
		baseURL:   baseURL,
		tokenTTL:  tokenTTL,
	}
}

// Login authenticates an email and password. The lockout gate runs
// before any credential work, so a locked account never reaches the
// password verifier; failures feed the throttle counter, the failure
// that reaches the threshold is answered with the lockout itself, and
// success clears the counter.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	email := strings.ToLower(req.Email)

	if err := s.throttle.CheckLockout(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			if lockErr := s.throttle.RecordFailure(ctx, email); lockErr != nil {
				return nil, lockErr
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		if lockErr := s.throttle.RecordFailure(ctx, email); lockErr != nil {
			return nil, lockErr
		}
		return nil, ErrInvalidCredentials
	}

	s.throttle.ClearOnSuccess(ctx, email)

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	s.sessions.Refresh(ctx, user.ToActor(), "")

	return s.createAuthResponse(user)
}

// Register creates a customer account and mails the activation link.
// When the mail dependency fails the account is rolled back so the
// address can register again later, rather than being stuck attached
// to an account that never received its link.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisterResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateCustomer(ctx, CreateCustomerParams{
		Email:        strings.ToLower(req.Email),
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       req.Gender,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	msg := notify.ActivationMessage(user.Email, s.baseURL, user.ID)
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Error("activation email failed, rolling back registration",
			"user_id", user.ID,
			"email", user.Email,
			"error", err,
		)
		if delErr := s.users.HardDelete(ctx, user.ID); delErr != nil {
			slog.Error("registration rollback failed",
				"user_id", user.ID,
				"error", delErr,
			)
		}
		return nil, core.DependencyError(
			fmt.Errorf("send activation email: %w", err),
		)
	}

	return &RegisterResponse{
		User:    toUserResponse(user),
		Message: "registration accepted, check your email for the activation link",
	}, nil
}

// Activate consumes an activation link and issues a session reflecting
// the new account state.
func (s *Service) Activate(
	ctx context.Context,
	userID string,
) (*AuthResponse, error) {
	user, err := s.lifecycle.Activate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.createAuthResponse(user)
}

func (s *Service) VerifyEmail(ctx context.Context, userID string) error {
	_, err := s.lifecycle.VerifyEmail(ctx, userID)
	return err
}

func (s *Service) RequestPasswordReset(
	ctx context.Context,
	req PasswordResetRequest,
) error {
	return s.lifecycle.IssuePasswordReset(ctx, strings.ToLower(req.Email))
}

func (s *Service) ConfirmPasswordReset(
	ctx context.Context,
	req PasswordResetConfirmRequest,
) error {
	return s.lifecycle.ConsumePasswordReset(ctx, req.Token, req.NewPassword)
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// GetCurrentUser reads through the session cache rather than hitting
// persistence on every token introspection.
func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	actor, err := s.sessions.ResolveByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserResponse{
		ID:            actor.ID,
		Email:         actor.Email,
		FirstName:     actor.FirstName,
		LastName:      actor.LastName,
		Role:          actor.RoleName,
		EmailVerified: actor.EmailVerified,
		Activated:     actor.Activated,
	}, nil
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:        user.ID,
		Email:         user.Email,
		Name:          user.FullName(),
		Role:          user.RoleName,
		EmailVerified: user.EmailVerified,
		Activated:     user.Activated,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.tokenTTL / time.Second),
			ExpiresAt:   time.Now().Add(s.tokenTTL),
		},
	}, nil
}

func toUserResponse(user *UserInfo) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Role:          user.RoleName,
		EmailVerified: user.EmailVerified,
		Activated:     user.Activated,
	}
}
