// handler_test.go

package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/grigoryblack/friendly-reminder/internal/course"
	"github.com/grigoryblack/friendly-reminder/internal/middleware"
	"github.com/grigoryblack/friendly-reminder/internal/user"
)

// fakeAuth injects a fixed caller identity the way the session middleware
// would.
func fakeAuth(userID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
			ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(
	courses map[string]*course.CourseWithTeacher,
	userID, role string,
) (chi.Router, *stubRepo) {
	svc, repo := newTestService(courses)
	handler := NewHandler(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r, fakeAuth(userID, role))
	return r, repo
}

func doJSON(
	t *testing.T,
	r chi.Router,
	method, path, body string,
) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Message
}

var futureSlot = time.Now().Add(48 * time.Hour).Truncate(time.Second)

func enrollBody() string {
	return `{"scheduledAt":"` + futureSlot.Format(time.RFC3339) + `"}`
}

// ---------------------------------------------------------------------------
// POST /courses/{courseID}/enroll
// ---------------------------------------------------------------------------

func TestEnrollHandler_Success(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	r, repo := newTestRouter(courses, "user-a", user.RoleStudent)

	rec := doJSON(t, r, http.MethodPost, "/courses/course-1/enroll", enrollBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.bookings) != 1 {
		t.Errorf("expected 1 stored booking, got %d", len(repo.bookings))
	}
}

func TestEnrollHandler_ErrorMessages(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"active":   testCourse("active", 1, true),
		"inactive": testCourse("inactive", 5, false),
	}
	r, _ := newTestRouter(courses, "user-a", user.RoleStudent)

	// Seed the single seat.
	if rec := doJSON(t, r, http.MethodPost, "/courses/active/enroll", enrollBody()); rec.Code != http.StatusCreated {
		t.Fatalf("seed enrollment failed: %d", rec.Code)
	}

	cases := []struct {
		name        string
		path        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			"unknown course",
			"/courses/missing/enroll",
			enrollBody(),
			http.StatusNotFound,
			"Course not found",
		},
		{
			"inactive course",
			"/courses/inactive/enroll",
			enrollBody(),
			http.StatusBadRequest,
			"Course is not active",
		},
		{
			"duplicate enrollment",
			"/courses/active/enroll",
			enrollBody(),
			http.StatusBadRequest,
			"You are already enrolled for this course at this time",
		},
		{
			"past date",
			"/courses/active/enroll",
			`{"scheduledAt":"2020-01-01T10:00:00Z"}`,
			http.StatusBadRequest,
			"Invalid date format or date must be in the future",
		},
		{
			"garbage date",
			"/courses/active/enroll",
			`{"scheduledAt":"next tuesday"}`,
			http.StatusBadRequest,
			"Invalid date format or date must be in the future",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, tc.path, tc.body)
			if rec.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			if msg := errorMessage(t, rec.Body.Bytes()); msg != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, msg)
			}
		})
	}
}

func TestEnrollHandler_FullSlot(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 1, true),
	}
	svc, _ := newTestService(courses)
	handler := NewHandler(svc)

	// Two routers over the same service, one per student.
	rA := chi.NewRouter()
	handler.RegisterRoutes(rA, fakeAuth("user-a", user.RoleStudent))
	rB := chi.NewRouter()
	handler.RegisterRoutes(rB, fakeAuth("user-b", user.RoleStudent))

	if rec := doJSON(t, rA, http.MethodPost, "/courses/course-1/enroll", enrollBody()); rec.Code != http.StatusCreated {
		t.Fatalf("seed enrollment failed: %d", rec.Code)
	}

	rec := doJSON(t, rB, http.MethodPost, "/courses/course-1/enroll", enrollBody())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	want := "This time slot is fully booked"
	if msg := errorMessage(t, rec.Body.Bytes()); msg != want {
		t.Errorf("expected %q, got %q", want, msg)
	}
}

func TestEnrollHandler_TeacherRoleRejected(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	r, _ := newTestRouter(courses, "user-t", user.RoleTeacher)

	rec := doJSON(t, r, http.MethodPost, "/courses/course-1/enroll", enrollBody())
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for teacher enrollment, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /bookings
// ---------------------------------------------------------------------------

func TestCreateHandler_ErrorMessages(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"inactive": testCourse("inactive", 5, false),
	}
	r, _ := newTestRouter(courses, "user-a", user.RoleStudent)

	body := `{"courseId":"inactive","scheduledAt":"` +
		futureSlot.Format(time.RFC3339) + `"}`

	// Unlike enroll, an inactive course is folded into the 404 here.
	rec := doJSON(t, r, http.MethodPost, "/bookings", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	want := "Course not found or inactive"
	if msg := errorMessage(t, rec.Body.Bytes()); msg != want {
		t.Errorf("expected %q, got %q", want, msg)
	}
}

func TestCreateHandler_FullSlotMessage(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 0, true),
	}
	r, _ := newTestRouter(courses, "user-a", user.RoleStudent)

	body := `{"courseId":"course-1","scheduledAt":"` +
		futureSlot.Format(time.RFC3339) + `"}`

	rec := doJSON(t, r, http.MethodPost, "/bookings", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	want := "Course is full for this time slot"
	if msg := errorMessage(t, rec.Body.Bytes()); msg != want {
		t.Errorf("expected %q, got %q", want, msg)
	}
}

func TestCreateHandler_DuplicateMessage(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	r, _ := newTestRouter(courses, "user-a", user.RoleStudent)

	body := `{"courseId":"course-1","scheduledAt":"` +
		futureSlot.Format(time.RFC3339) + `"}`

	if rec := doJSON(t, r, http.MethodPost, "/bookings", body); rec.Code != http.StatusCreated {
		t.Fatalf("seed booking failed: %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodPost, "/bookings", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	want := "You already have a booking for this course at this time"
	if msg := errorMessage(t, rec.Body.Bytes()); msg != want {
		t.Errorf("expected %q, got %q", want, msg)
	}
}

// ---------------------------------------------------------------------------
// DELETE /courses/{courseID}/enroll
// ---------------------------------------------------------------------------

func TestUnenrollHandler(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	r, repo := newTestRouter(courses, "user-a", user.RoleStudent)

	if rec := doJSON(t, r, http.MethodPost, "/courses/course-1/enroll", enrollBody()); rec.Code != http.StatusCreated {
		t.Fatalf("seed enrollment failed: %d", rec.Code)
	}

	slotParam := "scheduledAt=" + futureSlot.Format(time.RFC3339)

	rec := doJSON(t, r, http.MethodDelete, "/courses/course-1/enroll?"+slotParam, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Message != "Booking cancelled successfully" {
		t.Errorf("unexpected message %q", envelope.Data.Message)
	}
	if repo.bookings[0].Status != StatusCancelled {
		t.Errorf("booking not cancelled, status %q", repo.bookings[0].Status)
	}
}

func TestUnenrollHandler_ErrorMessages(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}
	r, repo := newTestRouter(courses, "user-a", user.RoleStudent)

	slotParam := "scheduledAt=" + futureSlot.Format(time.RFC3339)

	cases := []struct {
		name        string
		prepare     func(t *testing.T)
		path        string
		wantStatus  int
		wantMessage string
	}{
		{
			"missing scheduledAt",
			nil,
			"/courses/course-1/enroll",
			http.StatusBadRequest,
			"scheduledAt parameter is required",
		},
		{
			"no booking for slot",
			nil,
			"/courses/course-1/enroll?" + slotParam,
			http.StatusNotFound,
			"Booking not found",
		},
		{
			"completed booking",
			func(t *testing.T) {
				if rec := doJSON(t, r, http.MethodPost, "/courses/course-1/enroll", enrollBody()); rec.Code != http.StatusCreated {
					t.Fatalf("seed: %d", rec.Code)
				}
				repo.bookings[0].Status = StatusCompleted
			},
			"/courses/course-1/enroll?" + slotParam,
			http.StatusBadRequest,
			"Cannot cancel completed booking",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.prepare != nil {
				tc.prepare(t)
			}
			rec := doJSON(t, r, http.MethodDelete, tc.path, "")
			if rec.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			if msg := errorMessage(t, rec.Body.Bytes()); msg != tc.wantMessage {
				t.Errorf("expected %q, got %q", tc.wantMessage, msg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// GET /bookings/teacher
// ---------------------------------------------------------------------------

func TestListTeacherHandler_RoleGuard(t *testing.T) {
	courses := map[string]*course.CourseWithTeacher{
		"course-1": testCourse("course-1", 5, true),
	}

	rStudent, _ := newTestRouter(courses, "user-a", user.RoleStudent)
	rec := doJSON(t, rStudent, http.MethodGet, "/bookings/teacher", "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("student: expected 403, got %d", rec.Code)
	}

	rTeacher, _ := newTestRouter(courses, "teacher-user-1", user.RoleTeacher)
	rec = doJSON(t, rTeacher, http.MethodGet, "/bookings/teacher", "")
	if rec.Code != http.StatusOK {
		t.Errorf("teacher: expected 200, got %d", rec.Code)
	}
}
