// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/grigoryblack/friendly-reminder/internal/core"
)

type Repository interface {
	EntityCounts(ctx context.Context) (EntityCounts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

type EntityCounts struct {
	Users          int `db:"users" json:"users"`
	Teachers       int `db:"teachers" json:"teachers"`
	Courses        int `db:"courses" json:"courses"`
	ActiveCourses  int `db:"active_courses" json:"active_courses"`
	Bookings       int `db:"bookings" json:"bookings"`
	ActiveBookings int `db:"active_bookings" json:"active_bookings"`
}

func (r *repository) EntityCounts(ctx context.Context) (EntityCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM teachers) AS teachers,
			(SELECT COUNT(*) FROM courses) AS courses,
			(SELECT COUNT(*) FROM courses WHERE is_active) AS active_courses,
			(SELECT COUNT(*) FROM bookings) AS bookings,
			(SELECT COUNT(*) FROM bookings
			 WHERE status IN ('PENDING', 'CONFIRMED')) AS active_bookings`

	var counts EntityCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return EntityCounts{}, fmt.Errorf("entity counts: %w", err)
	}

	return counts, nil
}
