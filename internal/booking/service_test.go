// service_test.go

package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/grigoryblack/friendly-reminder/internal/core"
	"github.com/grigoryblack/friendly-reminder/internal/course"
	"github.com/grigoryblack/friendly-reminder/internal/payment"
	"github.com/grigoryblack/friendly-reminder/internal/user"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubCourses struct {
	courses map[string]*course.CourseWithTeacher
}

func (s *stubCourses) Get(
	_ context.Context,
	id string,
) (*course.CourseWithTeacher, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, fmt.Errorf("get course: %w", core.ErrNotFound)
	}
	clone := *c
	return &clone, nil
}

type stubRepo struct {
	courses  map[string]*course.CourseWithTeacher
	bookings []*Booking

	createErr error
}

func newStubRepo(courses map[string]*course.CourseWithTeacher) *stubRepo {
	return &stubRepo{courses: courses}
}

func (r *stubRepo) Create(_ context.Context, b *Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *b
	r.bookings = append(r.bookings, &clone)
	return nil
}

func (r *stubRepo) detail(b *Booking) *BookingDetail {
	d := &BookingDetail{
		Booking:   *b,
		UserName:  "Booker",
		UserEmail: "booker@example.com",
	}
	if c, ok := r.courses[b.CourseID]; ok {
		d.CourseTitle = c.Title
		d.CourseDuration = c.Duration
		d.CoursePrice = c.Price
		d.CourseMaxStudents = c.MaxStudents
		d.CourseIsActive = c.IsActive
		d.TeacherID = c.TeacherID
		d.TeacherUserID = c.TeacherUserID
		d.TeacherUserName = c.TeacherUserName
		d.TeacherUserEmail = c.TeacherUserEmail
	}
	return d
}

func (r *stubRepo) GetDetailByID(
	_ context.Context,
	id string,
) (*BookingDetail, error) {
	for _, b := range r.bookings {
		if b.ID == id {
			return r.detail(b), nil
		}
	}
	return nil, fmt.Errorf("get booking: %w", core.ErrNotFound)
}

func (r *stubRepo) GetByTriple(
	_ context.Context,
	userID, courseID string,
	scheduledAt time.Time,
) (*Booking, error) {
	for _, b := range r.bookings {
		if b.UserID == userID &&
			b.CourseID == courseID &&
			b.ScheduledAt.Equal(scheduledAt) {
			clone := *b
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("get booking: %w", core.ErrNotFound)
}

func (r *stubRepo) ListByUser(
	_ context.Context,
	userID, status string,
) ([]BookingDetail, error) {
	var details []BookingDetail
	for _, b := range r.bookings {
		if b.UserID != userID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		details = append(details, *r.detail(b))
	}
	return details, nil
}

func (r *stubRepo) ListByTeacherUser(
	_ context.Context,
	teacherUserID string,
) ([]BookingDetail, error) {
	var details []BookingDetail
	for _, b := range r.bookings {
		c, ok := r.courses[b.CourseID]
		if !ok || c.TeacherUserID != teacherUserID {
			continue
		}
		details = append(details, *r.detail(b))
	}
	return details, nil
}

func (r *stubRepo) CountActiveForSlot(
	_ context.Context,
	courseID string,
	scheduledAt time.Time,
) (int, error) {
	count := 0
	for _, b := range r.bookings {
		if b.CourseID == courseID &&
			b.ScheduledAt.Equal(scheduledAt) &&
			b.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id, status string) error {
	for _, b := range r.bookings {
		if b.ID == id {
			b.Status = status
			return nil
		}
	}
	return fmt.Errorf("update booking: %w", core.ErrNotFound)
}

type stubPayments struct {
	byBooking map[string][]payment.Payment
}

func (p *stubPayments) ListByBookingIDs(
	_ context.Context,
	bookingIDs []string,
) (map[string][]payment.Payment, error) {
	grouped := make(map[string][]payment.Payment)
	for _, id := range bookingIDs {
		if rows, ok := p.byBooking[id]; ok {
			grouped[id] = rows
		}
	}
	return grouped, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testCourse(id string, maxStudents int, active bool) *course.CourseWithTeacher {
	return &course.CourseWithTeacher{
		Course: course.Course{
			ID:          id,
			TeacherID:   "teacher-1",
			Title:       "Algebra",
			Duration:    60,
			Price:       25,
			MaxStudents: maxStudents,
			IsActive:    active,
		},
		TeacherUserID:    "teacher-user-1",
		TeacherUserName:  "Ms. Frizzle",
		TeacherUserEmail: "frizzle@example.com",
	}
}

func newTestService(
	courses map[string]*course.CourseWithTeacher,
) (*Service, *stubRepo) {
	repo := newStubRepo(courses)
	svc := NewService(
		repo,
		&stubCourses{courses: courses},
		&stubPayments{},
	)
	return svc, repo
}

var slot = time.Date(2026, 9, 14, 15, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestCreate_Success(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, repo := newTestService(courses)

	detail, err := svc.Create(context.Background(), "user-a", "course-1", slot, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if detail.Status != StatusPending {
		t.Errorf("expected status %q, got %q", StatusPending, detail.Status)
	}
	if detail.CourseTitle != "Algebra" {
		t.Errorf("expected course title on detail, got %q", detail.CourseTitle)
	}
	if len(repo.bookings) != 1 {
		t.Errorf("expected 1 stored booking, got %d", len(repo.bookings))
	}
}

func TestCreate_CourseNotFound(t *testing.T) {
	svc, _ := newTestService(map[string]*course.CourseWithTeacher{})

	_, err := svc.Create(context.Background(), "user-a", "missing", slot, nil)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_InactiveCourse(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, false),
	}
	svc, _ := newTestService(courses)

	_, err := svc.Create(context.Background(), "user-a", "course-1", slot, nil)
	if !errors.Is(err, ErrCourseInactive) {
		t.Errorf("expected ErrCourseInactive, got %v", err)
	}
}

func TestCreate_SlotFull(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 2, true),
	}
	svc, _ := newTestService(courses)

	ctx := context.Background()
	for _, u := range []string{"user-a", "user-b"} {
		if _, err := svc.Create(ctx, u, "course-1", slot, nil); err != nil {
			t.Fatalf("seed booking for %s: %v", u, err)
		}
	}

	_, err := svc.Create(ctx, "user-c", "course-1", slot, nil)
	if !errors.Is(err, ErrSlotFull) {
		t.Errorf("expected ErrSlotFull, got %v", err)
	}
}

func TestCreate_OtherSlotUnaffected(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 1, true),
	}
	svc, _ := newTestService(courses)

	ctx := context.Background()
	if _, err := svc.Create(ctx, "user-a", "course-1", slot, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	otherSlot := slot.Add(2 * time.Hour)
	if _, err := svc.Create(ctx, "user-b", "course-1", otherSlot, nil); err != nil {
		t.Errorf("different slot must not count against capacity: %v", err)
	}
}

func TestCreate_DuplicateTriple(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, _ := newTestService(courses)

	ctx := context.Background()
	if _, err := svc.Create(ctx, "user-a", "course-1", slot, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Create(ctx, "user-a", "course-1", slot, nil)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreate_DuplicateWinsOverFullSlot(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 1, true),
	}
	svc, _ := newTestService(courses)

	ctx := context.Background()
	if _, err := svc.Create(ctx, "user-a", "course-1", slot, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// The seed filled the slot, but the holder's repeat attempt must still
	// read as a duplicate rather than as a full slot.
	_, err := svc.Create(ctx, "user-a", "course-1", slot, nil)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreate_CancelledRowStillBlocksSameUser(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, repo := newTestService(courses)

	ctx := context.Background()
	detail, err := svc.Create(ctx, "user-a", "course-1", slot, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.UpdateStatus(ctx, detail.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// The row survives cancellation, so the same triple is still taken.
	_, err = svc.Create(ctx, "user-a", "course-1", slot, nil)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for cancelled row, got %v", err)
	}
}

// The full seat lifecycle: with a single seat, the owner cannot double-book,
// a second student is turned away, and cancelling frees the seat for them.
func TestCreate_SeatFreedAfterCancel(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 1, true),
	}
	svc, _ := newTestService(courses)
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-a", "course-1", slot, nil)
	if err != nil {
		t.Fatalf("first enrollment: %v", err)
	}

	if _, err := svc.Create(ctx, "user-a", "course-1", slot, nil); !errors.Is(err, ErrDuplicate) {
		t.Errorf("re-enrollment: expected ErrDuplicate, got %v", err)
	}

	if _, err := svc.Create(ctx, "user-b", "course-1", slot, nil); !errors.Is(err, ErrSlotFull) {
		t.Errorf("second student: expected ErrSlotFull, got %v", err)
	}

	if _, err := svc.CancelByID(ctx, first.ID, "user-a"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.Create(ctx, "user-b", "course-1", slot, nil); err != nil {
		t.Errorf("seat must be free after cancel, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// GetForActor tests
// ---------------------------------------------------------------------------

func TestGetForActor_Access(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, _ := newTestService(courses)
	ctx := context.Background()

	detail, err := svc.Create(ctx, "user-a", "course-1", slot, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := []struct {
		name      string
		actorID   string
		actorRole string
		wantErr   error
	}{
		{"owner", "user-a", user.RoleStudent, nil},
		{"course teacher", "teacher-user-1", user.RoleTeacher, nil},
		{"admin", "someone-else", user.RoleAdmin, nil},
		{"stranger", "user-b", user.RoleStudent, core.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetForActor(ctx, detail.ID, tc.actorID, tc.actorRole)
			if tc.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Cancel tests
// ---------------------------------------------------------------------------

func TestCancelByID_OwnerOnly(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, _ := newTestService(courses)
	ctx := context.Background()

	detail, err := svc.Create(ctx, "user-a", "course-1", slot, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.CancelByID(ctx, detail.ID, "user-b"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}

	cancelled, err := svc.CancelByID(ctx, detail.ID, "user-a")
	if err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected status %q, got %q", StatusCancelled, cancelled.Status)
	}
}

func TestCancelByID_InactiveStatusesRejected(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, repo := newTestService(courses)
	ctx := context.Background()

	for _, status := range []string{StatusCancelled, StatusCompleted} {
		detail, err := svc.Create(ctx, "user-"+status, "course-1", slot, nil)
		if err != nil {
			t.Fatalf("seed %s: %v", status, err)
		}
		if err := repo.UpdateStatus(ctx, detail.ID, status); err != nil {
			t.Fatalf("set status %s: %v", status, err)
		}

		_, err = svc.CancelByID(ctx, detail.ID, "user-"+status)
		if !errors.Is(err, ErrNotCancellable) {
			t.Errorf("status %s: expected ErrNotCancellable, got %v", status, err)
		}
	}
}

func TestCancelBySlot(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, repo := newTestService(courses)
	ctx := context.Background()

	detail, err := svc.Create(ctx, "user-a", "course-1", slot, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	cancelled, err := svc.CancelBySlot(ctx, "user-a", "course-1", slot)
	if err != nil {
		t.Fatalf("cancel by slot: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected status %q, got %q", StatusCancelled, cancelled.Status)
	}

	// Re-cancelling a cancelled booking is accepted.
	if _, err := svc.CancelBySlot(ctx, "user-a", "course-1", slot); err != nil {
		t.Errorf("re-cancel must succeed, got %v", err)
	}

	// A completed booking is the only status that blocks.
	if err := repo.UpdateStatus(ctx, detail.ID, StatusCompleted); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if _, err := svc.CancelBySlot(ctx, "user-a", "course-1", slot); !errors.Is(err, ErrCompleted) {
		t.Errorf("expected ErrCompleted, got %v", err)
	}
}

func TestCancelBySlot_NotFound(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, _ := newTestService(courses)

	_, err := svc.CancelBySlot(context.Background(), "user-a", "course-1", slot)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List tests
// ---------------------------------------------------------------------------

func TestListForUser_AttachesPayments(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	repo := newStubRepo(courses)
	payments := &stubPayments{byBooking: map[string][]payment.Payment{}}
	svc := NewService(repo, &stubCourses{courses: courses}, payments)
	ctx := context.Background()

	detail, err := svc.Create(ctx, "user-a", "course-1", slot, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	payments.byBooking[detail.ID] = []payment.Payment{
		{ID: "pay-1", BookingID: detail.ID, Amount: 25, Status: "PAID"},
	}

	details, byBooking, err := svc.ListForUser(ctx, "user-a", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(details))
	}
	if len(byBooking[detail.ID]) != 1 {
		t.Errorf("expected payment attached to booking %s", detail.ID)
	}
}

func TestListForUser_StatusFilter(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, repo := newTestService(courses)
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-a", "course-1", slot, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Create(ctx, "user-a", "course-1", slot.Add(time.Hour), nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.UpdateStatus(ctx, first.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	details, _, err := svc.ListForUser(ctx, "user-a", StatusPending)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(details) != 1 {
		t.Errorf("expected 1 pending booking, got %d", len(details))
	}
}

func TestListForTeacher(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	svc, _ := newTestService(courses)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user-a", "course-1", slot, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Create(ctx, "user-b", "course-1", slot, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	details, err := svc.ListForTeacher(ctx, "teacher-user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(details) != 2 {
		t.Errorf("expected 2 bookings for teacher, got %d", len(details))
	}

	none, err := svc.ListForTeacher(ctx, "other-teacher")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no bookings for other teacher, got %d", len(none))
	}
}
