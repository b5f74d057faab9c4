// dto.go

package booking

import (
	"time"

	"github.com/grigoryblack/friendly-reminder/internal/payment"
)

type CreateBookingRequest struct {
	CourseID    string  `json:"courseId"    validate:"required"`
	ScheduledAt string  `json:"scheduledAt" validate:"required"`
	Notes       *string `json:"notes"       validate:"omitempty,max=1000"`
}

type EnrollRequest struct {
	ScheduledAt string  `json:"scheduledAt" validate:"required"`
	Notes       *string `json:"notes"       validate:"omitempty,max=1000"`
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

type CourseSummary struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	ImageURL    *string        `json:"imageUrl"`
	Duration    int            `json:"duration"`
	Price       float64        `json:"price"`
	MaxStudents int            `json:"maxStudents"`
	IsActive    bool           `json:"isActive"`
	Teacher     TeacherSummary `json:"teacher"`
}

type BookingResponse struct {
	ID          string                    `json:"id"`
	UserID      string                    `json:"userId"`
	CourseID    string                    `json:"courseId"`
	ScheduledAt time.Time                 `json:"scheduledAt"`
	Status      string                    `json:"status"`
	Notes       *string                   `json:"notes"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
	User        *UserSummary              `json:"user,omitempty"`
	Course      *CourseSummary            `json:"course,omitempty"`
	Payments    []payment.PaymentResponse `json:"payments,omitempty"`
}

type CancelBookingResponse struct {
	Message string `json:"message"`
	Booking any    `json:"booking"`
}

// CancelledBookingRef is the minimal booking shape returned when cancelling
// by id.
type CancelledBookingRef struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func ToBookingResponse(d *BookingDetail) BookingResponse {
	return BookingResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		CourseID:    d.CourseID,
		ScheduledAt: d.ScheduledAt,
		Status:      d.Status,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		User: &UserSummary{
			Name:  d.UserName,
			Email: d.UserEmail,
		},
		Course: &CourseSummary{
			ID:          d.CourseID,
			Title:       d.CourseTitle,
			Description: d.CourseDescription,
			ImageURL:    d.CourseImageURL,
			Duration:    d.CourseDuration,
			Price:       d.CoursePrice,
			MaxStudents: d.CourseMaxStudents,
			IsActive:    d.CourseIsActive,
			Teacher: TeacherSummary{
				ID:     d.TeacherID,
				UserID: d.TeacherUserID,
				User: UserSummary{
					Name:  d.TeacherUserName,
					Email: d.TeacherUserEmail,
				},
			},
		},
	}
}

func ToBookingResponseList(
	details []BookingDetail,
	payments map[string][]payment.Payment,
) []BookingResponse {
	responses := make([]BookingResponse, 0, len(details))
	for i := range details {
		resp := ToBookingResponse(&details[i])

		rows := payments[details[i].ID]
		resp.Payments = make([]payment.PaymentResponse, 0, len(rows))
		for j := range rows {
			resp.Payments = append(
				resp.Payments,
				payment.ToPaymentResponse(&rows[j]),
			)
		}

		responses = append(responses, resp)
	}
	return responses
}
