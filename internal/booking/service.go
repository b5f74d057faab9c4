// service.go

package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grigoryblack/friendly-reminder/internal/core"
	"github.com/grigoryblack/friendly-reminder/internal/course"
	"github.com/grigoryblack/friendly-reminder/internal/payment"
	"github.com/grigoryblack/friendly-reminder/internal/user"
)

var (
	ErrCourseInactive = errors.New("course is not active")
	ErrSlotFull       = errors.New("slot is full")
	ErrDuplicate      = errors.New("duplicate booking for slot")
	ErrNotCancellable = errors.New("booking cannot be cancelled")
	ErrCompleted      = errors.New("booking already completed")
)

// CourseProvider resolves courses for capacity checks.
type CourseProvider interface {
	Get(ctx context.Context, id string) (*course.CourseWithTeacher, error)
}

type Service struct {
	repo     Repository
	courses  CourseProvider
	payments payment.Repository
}

func NewService(
	repo Repository,
	courses CourseProvider,
	payments payment.Repository,
) *Service {
	return &Service{
		repo:     repo,
		courses:  courses,
		payments: payments,
	}
}

// Create reserves a seat in the course's slot. The capacity check is a plain
// count-and-compare with no transaction around the subsequent insert, so two
// concurrent requests for the last seat can both succeed; only the store's
// unique constraint on the (user, course, slot) triple is enforced
// atomically.
func (s *Service) Create(
	ctx context.Context,
	userID, courseID string,
	scheduledAt time.Time,
	notes *string,
) (*BookingDetail, error) {
	c, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if !c.IsActive {
		return nil, fmt.Errorf("create booking: %w", ErrCourseInactive)
	}

	// Any existing row for the exact triple blocks re-enrollment, even a
	// cancelled one. Checked before capacity so a repeat attempt on a full
	// slot still reads as a duplicate, not as a full slot.
	_, err = s.repo.GetByTriple(ctx, userID, courseID, scheduledAt)
	if err == nil {
		return nil, fmt.Errorf("create booking: %w", ErrDuplicate)
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	active, err := s.repo.CountActiveForSlot(ctx, courseID, scheduledAt)
	if err != nil {
		return nil, err
	}

	if active >= c.MaxStudents {
		return nil, fmt.Errorf("create booking: %w", ErrSlotFull)
	}

	booking := &Booking{
		ID:          uuid.New().String(),
		UserID:      userID,
		CourseID:    courseID,
		ScheduledAt: scheduledAt,
		Status:      StatusPending,
		Notes:       notes,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	return s.repo.GetDetailByID(ctx, booking.ID)
}

// GetForActor returns the booking when the caller is its owner, the course's
// teacher, or an admin.
func (s *Service) GetForActor(
	ctx context.Context,
	id, actorUserID, actorRole string,
) (*BookingDetail, error) {
	detail, err := s.repo.GetDetailByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := detail.UserID == actorUserID
	isTeacher := detail.TeacherUserID == actorUserID
	isAdmin := actorRole == user.RoleAdmin

	if !isOwner && !isTeacher && !isAdmin {
		return nil, fmt.Errorf("get booking: %w", core.ErrForbidden)
	}

	return detail, nil
}

// CancelByID cancels the caller's own booking; only PENDING and CONFIRMED
// bookings can be cancelled this way.
func (s *Service) CancelByID(
	ctx context.Context,
	id, actorUserID string,
) (*BookingDetail, error) {
	detail, err := s.repo.GetDetailByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if detail.UserID != actorUserID {
		return nil, fmt.Errorf("cancel booking: %w", core.ErrForbidden)
	}

	if !detail.IsActive() {
		return nil, fmt.Errorf("cancel booking: %w", ErrNotCancellable)
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}

	detail.Status = StatusCancelled
	return detail, nil
}

// CancelBySlot cancels the caller's booking for the (course, slot) pair.
// Unlike CancelByID it re-cancels CANCELLED rows without complaint; only
// COMPLETED blocks.
func (s *Service) CancelBySlot(
	ctx context.Context,
	userID, courseID string,
	scheduledAt time.Time,
) (*BookingDetail, error) {
	booking, err := s.repo.GetByTriple(ctx, userID, courseID, scheduledAt)
	if err != nil {
		return nil, err
	}

	if booking.Status == StatusCompleted {
		return nil, fmt.Errorf("cancel booking: %w", ErrCompleted)
	}

	if err := s.repo.UpdateStatus(ctx, booking.ID, StatusCancelled); err != nil {
		return nil, err
	}

	return s.repo.GetDetailByID(ctx, booking.ID)
}

// ListForUser returns the user's bookings newest slot first, with payment
// rows attached.
func (s *Service) ListForUser(
	ctx context.Context,
	userID, status string,
) ([]BookingDetail, map[string][]payment.Payment, error) {
	details, err := s.repo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(details))
	for i := range details {
		ids = append(ids, details[i].ID)
	}

	payments, err := s.payments.ListByBookingIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	return details, payments, nil
}

// ListForTeacher returns every booking on courses owned by the user's
// teacher profile, earliest slot first.
func (s *Service) ListForTeacher(
	ctx context.Context,
	teacherUserID string,
) ([]BookingDetail, error) {
	return s.repo.ListByTeacherUser(ctx, teacherUserID)
}
