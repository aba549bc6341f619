// AngelaMos | 2026
// source.go

package user

import (
	"context"

	"github.com/carterperez-dev/commerce-api/internal/permission"
	"github.com/carterperez-dev/commerce-api/internal/session"
)

// SessionSource adapts the user and permission repositories into the
// persistence side of the session cache manager.
type SessionSource struct {
	users Repository
	perms permission.Repository
}

func NewSessionSource(
	users Repository,
	perms permission.Repository,
) *SessionSource {
	return &SessionSource{users: users, perms: perms}
}

func (s *SessionSource) LoadByID(
	ctx context.Context,
	id string,
) (*session.Actor, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.ToActor(), nil
}

func (s *SessionSource) LoadByEmail(
	ctx context.Context,
	email string,
) (*session.Actor, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return u.ToActor(), nil
}

func (s *SessionSource) LoadPermissions(
	ctx context.Context,
	userID string,
) ([]session.Permission, error) {
	perms, err := s.perms.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return permission.ToProjectionList(perms), nil
}

var _ session.Source = (*SessionSource)(nil)
