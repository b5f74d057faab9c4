// dto.go

package teacher

import (
	"time"
)

type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TeacherResponse struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Bio         *string      `json:"bio"`
	Experience  *string      `json:"experience"`
	Specialties []string     `json:"specialties"`
	HourlyRate  *float64     `json:"hourlyRate"`
	AvatarURL   *string      `json:"avatarUrl"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	User        *UserSummary `json:"user,omitempty"`
}

func ToTeacherResponse(t *TeacherWithUser) TeacherResponse {
	specialties := []string(t.Specialties)
	if specialties == nil {
		specialties = []string{}
	}

	return TeacherResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Bio:         t.Bio,
		Experience:  t.Experience,
		Specialties: specialties,
		HourlyRate:  t.HourlyRate,
		AvatarURL:   t.AvatarURL,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		User: &UserSummary{
			Name:  t.UserName,
			Email: t.UserEmail,
		},
	}
}
