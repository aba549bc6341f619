// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/commerce-api/internal/session"
)

type User struct {
	ID                string     `db:"id"`
	Email             string     `db:"email"`
	PasswordHash      string     `db:"password_hash"`
	FirstName         string     `db:"first_name"`
	LastName          string     `db:"last_name"`
	Gender            *string    `db:"gender"`
	RoleID            string     `db:"role_id"`
	RoleName          string     `db:"role_name"`
	EmailVerified     bool       `db:"email_verified"`
	Activated         bool       `db:"activated"`
	ResetTokenHash    *string    `db:"reset_token_hash"`
	ResetTokenExpires *time.Time `db:"reset_token_expires"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	DeletedAt         *time.Time `db:"deleted_at"`
}

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ToActor projects the safe subset of fields into the cached shape.
func (u *User) ToActor() *session.Actor {
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
