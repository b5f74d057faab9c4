// entity.go

package course

import (
	"time"
)

type Course struct {
	ID          string    `db:"id"`
	TeacherID   string    `db:"teacher_id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	ImageURL    *string   `db:"image_url"`
	Duration    int       `db:"duration"`
	Price       float64   `db:"price"`
	MaxStudents int       `db:"max_students"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CourseWithTeacher is a course row joined with its teacher and the teacher's
// user, plus a booking count whose meaning depends on the query (active
// bookings for listings, all bookings for single fetches).
type CourseWithTeacher struct {
	Course
	TeacherUserID    string `db:"teacher_user_id"`
	TeacherUserName  string `db:"teacher_user_name"`
	TeacherUserEmail string `db:"teacher_user_email"`
	BookingCount     int    `db:"booking_count"`
}
