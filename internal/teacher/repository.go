// repository.go

package teacher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grigoryblack/friendly-reminder/internal/core"
)

type Repository interface {
	Create(ctx context.Context, teacher *Teacher) error
	GetByID(ctx context.Context, id string) (*TeacherWithUser, error)
	GetByUserID(ctx context.Context, userID string) (*TeacherWithUser, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const teacherWithUserQuery = `
	SELECT t.id, t.user_id, t.bio, t.experience, t.specialties,
	       t.hourly_rate, t.avatar_url, t.created_at, t.updated_at,
	       u.name AS user_name, u.email AS user_email
	FROM teachers t
	JOIN users u ON u.id = t.user_id`

func (r *repository) Create(ctx context.Context, teacher *Teacher) error {
	query := `
		INSERT INTO teachers (id, user_id, bio, experience, specialties,
		                      hourly_rate, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, teacher, query,
		teacher.ID,
		teacher.UserID,
		teacher.Bio,
		teacher.Experience,
		teacher.Specialties,
		teacher.HourlyRate,
		teacher.AvatarURL,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create teacher: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create teacher: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*TeacherWithUser, error) {
	query := teacherWithUserQuery + ` WHERE t.id = $1`

	var teacher TeacherWithUser
	err := r.db.GetContext(ctx, &teacher, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get teacher: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}

	return &teacher, nil
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID string,
) (*TeacherWithUser, error) {
	query := teacherWithUserQuery + ` WHERE t.user_id = $1`

	var teacher TeacherWithUser
	err := r.db.GetContext(ctx, &teacher, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get teacher by user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher by user: %w", err)
	}

	return &teacher, nil
}
