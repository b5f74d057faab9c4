// entity.go

package teacher

import (
	"time"

	"github.com/lib/pq"
)

type Teacher struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Bio         *string        `db:"bio"`
	Experience  *string        `db:"experience"`
	Specialties pq.StringArray `db:"specialties"`
	HourlyRate  *float64       `db:"hourly_rate"`
	AvatarURL   *string        `db:"avatar_url"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// TeacherWithUser carries the owning user's display fields alongside the
// profile for API responses.
type TeacherWithUser struct {
	Teacher
	UserName  string `db:"user_name"`
	UserEmail string `db:"user_email"`
}
