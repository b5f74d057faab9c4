// repository.go

package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grigoryblack/friendly-reminder/internal/core"
)

type Repository interface {
	Create(ctx context.Context, course *Course) error
	GetByID(ctx context.Context, id string) (*CourseWithTeacher, error)
	List(
		ctx context.Context,
		params ListCoursesParams,
	) ([]CourseWithTeacher, error)
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	CountBookings(ctx context.Context, courseID string) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, course *Course) error {
	query := `
		INSERT INTO courses (id, teacher_id, title, description, image_url,
		                     duration, price, max_students, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, course, query,
		course.ID,
		course.TeacherID,
		course.Title,
		course.Description,
		course.ImageURL,
		course.Duration,
		course.Price,
		course.MaxStudents,
		course.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID joins the teacher and counts all bookings regardless of status,
// which is what the delete policy needs.
func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*CourseWithTeacher, error) {
	query := `
		SELECT c.id, c.teacher_id, c.title, c.description, c.image_url,
		       c.duration, c.price, c.max_students, c.is_active,
		       c.created_at, c.updated_at,
		       t.user_id AS teacher_user_id,
		       u.name AS teacher_user_name,
		       u.email AS teacher_user_email,
		       (SELECT COUNT(*) FROM bookings b
		        WHERE b.course_id = c.id) AS booking_count
		FROM courses c
		JOIN teachers t ON t.id = c.teacher_id
		JOIN users u ON u.id = t.user_id
		WHERE c.id = $1`

	var course CourseWithTeacher
	err := r.db.GetContext(ctx, &course, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get course: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	return &course, nil
}

// List counts only PENDING/CONFIRMED bookings per course, matching the
// listing's seat-availability display.
func (r *repository) List(
	ctx context.Context,
	params ListCoursesParams,
) ([]CourseWithTeacher, error) {
	query := `
		SELECT c.id, c.teacher_id, c.title, c.description, c.image_url,
		       c.duration, c.price, c.max_students, c.is_active,
		       c.created_at, c.updated_at,
		       t.user_id AS teacher_user_id,
		       u.name AS teacher_user_name,
		       u.email AS teacher_user_email,
		       (SELECT COUNT(*) FROM bookings b
		        WHERE b.course_id = c.id
		          AND b.status IN ('PENDING', 'CONFIRMED')) AS booking_count
		FROM courses c
		JOIN teachers t ON t.id = c.teacher_id
		JOIN users u ON u.id = t.user_id
		WHERE ($1 OR c.is_active)
		  AND ($2 = '' OR c.teacher_id = $2)
		ORDER BY c.created_at DESC`

	var courses []CourseWithTeacher
	err := r.db.SelectContext(
		ctx,
		&courses,
		query,
		params.IncludeInactive,
		params.TeacherID,
	)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	return courses, nil
}

func (r *repository) Update(ctx context.Context, course *Course) error {
	query := `
		UPDATE courses
		SET title = $2, description = $3, image_url = $4, duration = $5,
		    price = $6, max_students = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &course.UpdatedAt, query,
		course.ID,
		course.Title,
		course.Description,
		course.ImageURL,
		course.Duration,
		course.Price,
		course.MaxStudents,
		course.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update course: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM courses WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete course: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	query := `
		UPDATE courses
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate course: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate course: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("deactivate course: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountBookings(
	ctx context.Context,
	courseID string,
) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE course_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count course bookings: %w", err)
	}

	return count, nil
}
