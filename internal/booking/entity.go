// entity.go

package booking

import (
	"time"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

type Booking struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	CourseID    string    `db:"course_id"`
	ScheduledAt time.Time `db:"scheduled_at"`
	Status      string    `db:"status"`
	Notes       *string   `db:"notes"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// IsActive reports whether the booking counts against slot capacity.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// BookingDetail is a booking row joined with the booker, the course, the
// course's teacher, and the teacher's user.
type BookingDetail struct {
	Booking
	UserName  string `db:"user_name"`
	UserEmail string `db:"user_email"`

	CourseTitle       string  `db:"course_title"`
	CourseDescription *string `db:"course_description"`
	CourseImageURL    *string `db:"course_image_url"`
	CourseDuration    int     `db:"course_duration"`
	CoursePrice       float64 `db:"course_price"`
	CourseMaxStudents int     `db:"course_max_students"`
	CourseIsActive    bool    `db:"course_is_active"`

	TeacherID        string `db:"teacher_id"`
	TeacherUserID    string `db:"teacher_user_id"`
	TeacherUserName  string `db:"teacher_user_name"`
	TeacherUserEmail string `db:"teacher_user_email"`
}
