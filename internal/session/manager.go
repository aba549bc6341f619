// AngelaMos | 2026
// manager.go

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/carterperez-dev/commerce-api/internal/core"
)

// Actor is the cached projection of a user: the safe subset of fields
// a request needs to resolve identity and role. No password hash, no
// reset token.
type Actor struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	RoleID        string `json:"role_id"`
	RoleName      string `json:"role_name"`
	EmailVerified bool   `json:"email_verified"`
	Activated     bool   `json:"activated"`
}

func (a *Actor) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Permission is the cached projection of one capability grant.
type Permission struct {
	Capability string `json:"capability"`
	CanCreate  bool   `json:"can_create"`
	CanRead    bool   `json:"can_read"`
	CanUpdate  bool   `json:"can_update"`
	CanDelete  bool   `json:"can_delete"`
}

// Source is the persistence collaborator behind the cache: the system
// of record consulted on every miss.
type Source interface {
	LoadByID(ctx context.Context, id string) (*Actor, error)
	LoadByEmail(ctx context.Context, email string) (*Actor, error)
	LoadPermissions(ctx context.Context, userID string) ([]Permission, error)
}

func ActorIDKey(id string) string       { return "user:id:" + id }
func ActorEmailKey(email string) string { return "user:email:" + email }
func PermissionsKey(id string) string   { return "user:perms:" + id }

// Manager implements cache-aside reads and write-through updates over
// the actor and permission projections. Store failures degrade to the
// Source and are logged, never fatal: the cache is a projection, the
// database is the record.
type Manager struct {
	store   Store
	source  Source
	ttl     time.Duration
	permTTL time.Duration
}

func NewManager(
	store Store,
	source Source,
	ttl, permTTL time.Duration,
) *Manager {
	return &Manager{
		store:   store,
		source:  source,
		ttl:     ttl,
		permTTL: permTTL,
	}
}

func (m *Manager) ResolveByID(
	ctx context.Context,
	id string,
) (*Actor, error) {
	if actor, ok := m.cachedActor(ctx, ActorIDKey(id)); ok {
		return actor, nil
	}

	actor, err := m.source.LoadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	m.populateActor(ctx, actor)
	return actor, nil
}

func (m *Manager) ResolveByEmail(
	ctx context.Context,
	email string,
) (*Actor, error) {
	if actor, ok := m.cachedActor(ctx, ActorEmailKey(email)); ok {
		return actor, nil
	}

	actor, err := m.source.LoadByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	m.populateActor(ctx, actor)
	return actor, nil
}

// Permissions resolves the actor's full permission set through the
// cache-aside path.
func (m *Manager) Permissions(
	ctx context.Context,
	userID string,
) ([]Permission, error) {
	key := PermissionsKey(userID)

	raw, err := m.store.Get(ctx, key)
	if err == nil {
		var perms []Permission
		if unmarshalErr := json.Unmarshal([]byte(raw), &perms); unmarshalErr == nil {
			return perms, nil
		}
		slog.Warn("corrupt permission cache entry, reloading",
			"key", key,
		)
	} else if !errors.Is(err, core.ErrCacheMiss) {
		slog.Warn("permission cache read failed, falling back to database",
			"key", key,
			"error", err,
		)
	}

	perms, err := m.source.LoadPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	m.RefreshPermissions(ctx, userID, perms)
	return perms, nil
}

// Capability resolves a single capability grant, scoped by name.
// Absent capability yields a zero-flag permission, not an error.
func (m *Manager) Capability(
	ctx context.Context,
	userID, capability string,
) (Permission, error) {
	perms, err := m.Permissions(ctx, userID)
	if err != nil {
		return Permission{}, err
	}

	for _, p := range perms {
		if p.Capability == capability {
			return p, nil
		}
	}

	return Permission{Capability: capability}, nil
}

// Refresh writes the actor projection through to the cache after a
// persistence write has been acknowledged. When the email changed,
// previousEmail names the stale key; it is deleted in the same logical
// step the new keys are written, so the two addresses never disagree.
func (m *Manager) Refresh(
	ctx context.Context,
	actor *Actor,
	previousEmail string,
) {
	if previousEmail != "" && previousEmail != actor.Email {
		if err := m.store.Delete(ctx, ActorEmailKey(previousEmail)); err != nil {
			slog.Warn("failed to drop stale email projection",
				"email", previousEmail,
				"error", err,
			)
		}
	}

	m.populateActor(ctx, actor)
}

// RefreshPermissions overwrites the cached permission set. Call only
// after the corresponding persistence commit succeeded.
func (m *Manager) RefreshPermissions(
	ctx context.Context,
	userID string,
	perms []Permission,
) {
	raw, err := json.Marshal(perms)
	if err != nil {
		slog.Warn("failed to marshal permission projection",
			"user_id", userID,
			"error", err,
		)
		return
	}

	if err := m.store.Set(ctx, PermissionsKey(userID), string(raw), m.permTTL); err != nil {
		slog.Warn("permission cache write failed",
			"user_id", userID,
			"error", err,
		)
	}
}

// Invalidate removes every projection key for the actor: the id key,
// the email key, and the permission key.
func (m *Manager) Invalidate(ctx context.Context, id, email string) {
	keys := []string{ActorIDKey(id), PermissionsKey(id)}
	if email != "" {
		keys = append(keys, ActorEmailKey(email))
	}

	if err := m.store.Delete(ctx, keys...); err != nil {
		slog.Warn("session invalidation failed, TTL is the backstop",
			"user_id", id,
			"error", err,
		)
	}
}

func (m *Manager) cachedActor(
	ctx context.Context,
	key string,
) (*Actor, bool) {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, core.ErrCacheMiss) {
			slog.Warn("session cache read failed, falling back to database",
				"key", key,
				"error", err,
			)
		}
		return nil, false
	}

	var actor Actor
	if err := json.Unmarshal([]byte(raw), &actor); err != nil {
		slog.Warn("corrupt session cache entry, reloading",
			"key", key,
		)
		return nil, false
	}

	return &actor, true
}

// populateActor writes both address keys for the actor. Write failures
// are logged and swallowed: the next read falls through to the source.
func (m *Manager) populateActor(ctx context.Context, actor *Actor) {
	raw, err := json.Marshal(actor)
	if err != nil {
		slog.Warn("failed to marshal actor projection",
			"user_id", actor.ID,
			"error", err,
		)
		return
	}

	for _, key := range []string{
		ActorIDKey(actor.ID),
		ActorEmailKey(actor.Email),
	} {
		if err := m.store.Set(ctx, key, string(raw), m.ttl); err != nil {
			slog.Warn("session cache write failed",
				"key", key,
				"error", err,
			)
		}
	}
}
