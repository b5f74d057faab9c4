// repository.go

package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/grigoryblack/friendly-reminder/internal/core"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetDetailByID(ctx context.Context, id string) (*BookingDetail, error)
	GetByTriple(
		ctx context.Context,
		userID, courseID string,
		scheduledAt time.Time,
	) (*Booking, error)
	ListByUser(
		ctx context.Context,
		userID, status string,
	) ([]BookingDetail, error)
	ListByTeacherUser(
		ctx context.Context,
		teacherUserID string,
	) ([]BookingDetail, error)
	CountActiveForSlot(
		ctx context.Context,
		courseID string,
		scheduledAt time.Time,
	) (int, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const bookingDetailQuery = `
	SELECT b.id, b.user_id, b.course_id, b.scheduled_at, b.status, b.notes,
	       b.created_at, b.updated_at,
	       bu.name AS user_name, bu.email AS user_email,
	       c.title AS course_title,
	       c.description AS course_description,
	       c.image_url AS course_image_url,
	       c.duration AS course_duration,
	       c.price AS course_price,
	       c.max_students AS course_max_students,
	       c.is_active AS course_is_active,
	       t.id AS teacher_id,
	       t.user_id AS teacher_user_id,
	       tu.name AS teacher_user_name,
	       tu.email AS teacher_user_email
	FROM bookings b
	JOIN users bu ON bu.id = b.user_id
	JOIN courses c ON c.id = b.course_id
	JOIN teachers t ON t.id = c.teacher_id
	JOIN users tu ON tu.id = t.user_id`

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, course_id, scheduled_at, status,
		                      notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, booking, query,
		booking.ID,
		booking.UserID,
		booking.CourseID,
		booking.ScheduledAt,
		booking.Status,
		booking.Notes,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create booking: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

func (r *repository) GetDetailByID(
	ctx context.Context,
	id string,
) (*BookingDetail, error) {
	query := bookingDetailQuery + ` WHERE b.id = $1`

	var detail BookingDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get booking: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	return &detail, nil
}

// GetByTriple matches on the exact (user, course, timestamp) triple
// regardless of status.
func (r *repository) GetByTriple(
	ctx context.Context,
	userID, courseID string,
	scheduledAt time.Time,
) (*Booking, error) {
	query := `
		SELECT id, user_id, course_id, scheduled_at, status, notes,
		       created_at, updated_at
		FROM bookings
		WHERE user_id = $1 AND course_id = $2 AND scheduled_at = $3`

	var booking Booking
	err := r.db.GetContext(ctx, &booking, query, userID, courseID, scheduledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get booking by slot: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking by slot: %w", err)
	}

	return &booking, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID, status string,
) ([]BookingDetail, error) {
	query := bookingDetailQuery + `
	WHERE b.user_id = $1
	  AND ($2 = '' OR b.status = $2)
	ORDER BY b.scheduled_at DESC`

	var details []BookingDetail
	if err := r.db.SelectContext(ctx, &details, query, userID, status); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return details, nil
}

func (r *repository) ListByTeacherUser(
	ctx context.Context,
	teacherUserID string,
) ([]BookingDetail, error) {
	query := bookingDetailQuery + `
	WHERE t.user_id = $1
	ORDER BY b.scheduled_at ASC`

	var details []BookingDetail
	err := r.db.SelectContext(ctx, &details, query, teacherUserID)
	if err != nil {
		return nil, fmt.Errorf("list teacher bookings: %w", err)
	}

	return details, nil
}

func (r *repository) CountActiveForSlot(
	ctx context.Context,
	courseID string,
	scheduledAt time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE course_id = $1
		  AND scheduled_at = $2
		  AND status IN ('PENDING', 'CONFIRMED')`

	var count int
	err := r.db.GetContext(ctx, &count, query, courseID, scheduledAt)
	if err != nil {
		return 0, fmt.Errorf("count slot bookings: %w", err)
	}

	return count, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update booking status: %w", core.ErrNotFound)
	}

	return nil
}
