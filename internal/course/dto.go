// dto.go

package course

import (
	"time"
)

type CreateCourseRequest struct {
	Title       string  `json:"title"       validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string `json:"imageUrl"    validate:"omitempty,url"`
	Duration    int     `json:"duration"    validate:"required,min=1"`
	Price       float64 `json:"price"       validate:"gte=0"`
	MaxStudents int     `json:"maxStudents" validate:"required,min=1"`

	// Admins may create a course on behalf of another teacher.
	TeacherID string `json:"teacherId" validate:"omitempty"`
}

type UpdateCourseRequest struct {
	Title       *string  `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string  `json:"imageUrl"    validate:"omitempty,url"`
	Duration    *int     `json:"duration"    validate:"omitempty,min=1"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	MaxStudents *int     `json:"maxStudents" validate:"omitempty,min=1"`
	IsActive    *bool    `json:"isActive"`
}

type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TeacherSummary struct {
	ID     string      `json:"id"`
	UserID string      `json:"userId"`
	User   UserSummary `json:"user"`
}

type CourseResponse struct {
	ID           string          `json:"id"`
	TeacherID    string          `json:"teacherId"`
	Title        string          `json:"title"`
	Description  *string         `json:"description"`
	ImageURL     *string         `json:"imageUrl"`
	Duration     int             `json:"duration"`
	Price        float64         `json:"price"`
	MaxStudents  int             `json:"maxStudents"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Teacher      *TeacherSummary `json:"teacher,omitempty"`
	BookingCount int             `json:"bookingCount"`
}

type DeleteCourseResponse struct {
	Message string          `json:"message"`
	Course  *CourseResponse `json:"course,omitempty"`
}

type ListCoursesParams struct {
	TeacherID       string
	IncludeInactive bool
}

func ToCourseResponse(c *CourseWithTeacher) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		TeacherID:   c.TeacherID,
		Title:       c.Title,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		Duration:    c.Duration,
		Price:       c.Price,
		MaxStudents: c.MaxStudents,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Teacher: &TeacherSummary{
			ID:     c.TeacherID,
			UserID: c.TeacherUserID,
			User: UserSummary{
				Name:  c.TeacherUserName,
				Email: c.TeacherUserEmail,
			},
		},
		BookingCount: c.BookingCount,
	}
}

func ToCourseResponseList(courses []CourseWithTeacher) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		responses = append(responses, ToCourseResponse(&courses[i]))
	}
	return responses
}
