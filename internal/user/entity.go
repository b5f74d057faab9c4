// entity.go

package user

import (
	"time"
)

type User struct {
	ID               string     `db:"id"`
	Email            string     `db:"email"`
	Name             string     `db:"name"`
	PasswordHash     *string    `db:"password_hash"`
	Role             string     `db:"role"`
	AvatarURL        *string    `db:"avatar_url"`
	ResetTokenHash   *string    `db:"reset_token_hash"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleStudent = "STUDENT"
	RoleParent  = "PARENT"
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)
