// service.go

package course

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/grigoryblack/friendly-reminder/internal/core"
	"github.com/grigoryblack/friendly-reminder/internal/teacher"
	"github.com/grigoryblack/friendly-reminder/internal/user"
)

// TeacherProvider resolves or provisions the acting user's teacher profile.
type TeacherProvider interface {
	GetOrCreateByUserID(
		ctx context.Context,
		userID string,
		avatarURL *string,
	) (*teacher.TeacherWithUser, error)
}

type Service struct {
	repo     Repository
	teachers TeacherProvider
}

func NewService(repo Repository, teachers TeacherProvider) *Service {
	return &Service{
		repo:     repo,
		teachers: teachers,
	}
}

func (s *Service) List(
	ctx context.Context,
	params ListCoursesParams,
) ([]CourseWithTeacher, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Get(
	ctx context.Context,
	id string,
) (*CourseWithTeacher, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(
	ctx context.Context,
	actorUserID, actorRole string,
	req CreateCourseRequest,
) (*CourseWithTeacher, error) {
	var teacherID string
	if actorRole == user.RoleAdmin && req.TeacherID != "" {
		teacherID = req.TeacherID
	} else {
		profile, err := s.teachers.GetOrCreateByUserID(ctx, actorUserID, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve teacher profile: %w", err)
		}
		teacherID = profile.ID
	}

	course := &Course{
		ID:          uuid.New().String(),
		TeacherID:   teacherID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Duration:    req.Duration,
		Price:       req.Price,
		MaxStudents: req.MaxStudents,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, course.ID)
}

func (s *Service) Update(
	ctx context.Context,
	actorUserID, actorRole, id string,
	req UpdateCourseRequest,
) (*CourseWithTeacher, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorRole != user.RoleAdmin && existing.TeacherUserID != actorUserID {
		return nil, fmt.Errorf("update course: %w", core.ErrForbidden)
	}

	course := existing.Course
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.ImageURL != nil {
		course.ImageURL = req.ImageURL
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.MaxStudents != nil {
		course.MaxStudents = *req.MaxStudents
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, &course); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

type DeleteResult struct {
	Deactivated bool
	Course      *CourseWithTeacher
}

// Delete hard-deletes a course only when nothing has ever been booked on it.
// Any booking row, whatever its status, forces a deactivate instead so
// existing bookings always resolve to a course record.
func (s *Service) Delete(
	ctx context.Context,
	actorUserID, actorRole, id string,
) (*DeleteResult, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorRole != user.RoleAdmin && existing.TeacherUserID != actorUserID {
		return nil, fmt.Errorf("delete course: %w", core.ErrForbidden)
	}

	if existing.BookingCount > 0 {
		if err := s.repo.Deactivate(ctx, id); err != nil {
			return nil, err
		}

		existing.IsActive = false
		return &DeleteResult{Deactivated: true, Course: existing}, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	return &DeleteResult{Deactivated: false}, nil
}
