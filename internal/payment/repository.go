// repository.go

package payment

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/grigoryblack/friendly-reminder/internal/core"
)

type Repository interface {
	ListByBookingIDs(
		ctx context.Context,
		bookingIDs []string,
	) (map[string][]Payment, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// ListByBookingIDs returns payments grouped by booking id.
func (r *repository) ListByBookingIDs(
	ctx context.Context,
	bookingIDs []string,
) (map[string][]Payment, error) {
	grouped := make(map[string][]Payment, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return grouped, nil
	}

	query := `
		SELECT id, booking_id, amount, status, created_at
		FROM payments
		WHERE booking_id = ANY($1)
		ORDER BY created_at`

	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, query, pq.Array(bookingIDs))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	for _, p := range payments {
		grouped[p.BookingID] = append(grouped[p.BookingID], p)
	}

	return grouped, nil
}
