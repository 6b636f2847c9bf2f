package service

import (
	"context"
	"fmt"

	"github.com/tigabum/christian-platform/internal/identity/repository"
	pkgerrors "github.com/tigabum/christian-platform/pkg/errors"
)

// UserService exposes read-side user queries.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// ResponderDirectory lists active responders, optionally narrowed to one
// expertise tag. Askers use it to browse who can take their question.
func (s *UserService) ResponderDirectory(ctx context.Context, expertise string) ([]*repository.User, error) {
	if expertise != "" {
		if err := ValidateExpertise([]string{expertise}); err != nil {
			return nil, err
		}
	}
	responders, err := s.users.ListResponders(ctx, repository.ResponderFilter{
		Status:    "active",
		Expertise: expertise,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("list responders failed: %w", err), pkgerrors.DatabaseError)
	}
	return responders, nil
}
