// service.go

package teacher

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/grigoryblack/friendly-reminder/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*TeacherWithUser, error) {
	return s.repo.GetByID(ctx, id)
}

// GetOrCreateByUserID returns the user's teacher profile, provisioning an
// empty one on first use. Two concurrent first requests can both attempt the
// insert; the unique constraint on user_id rejects the loser, which then
// re-fetches the winner's row.
func (s *Service) GetOrCreateByUserID(
	ctx context.Context,
	userID string,
	avatarURL *string,
) (*TeacherWithUser, error) {
	teacher, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return teacher, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	created := &Teacher{
		ID:          uuid.New().String(),
		UserID:      userID,
		Specialties: pq.StringArray{},
		AvatarURL:   avatarURL,
	}

	createErr := s.repo.Create(ctx, created)
	if createErr == nil {
		return s.repo.GetByUserID(ctx, userID)
	}
	if errors.Is(createErr, core.ErrDuplicateKey) {
		// Lost the provisioning race; the winner's row is authoritative.
		return s.repo.GetByUserID(ctx, userID)
	}

	return nil, createErr
}
