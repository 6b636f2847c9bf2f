package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	identityservice "github.com/tigabum/christian-platform/internal/identity/service"
	pkgerrors "github.com/tigabum/christian-platform/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

// ResponderService provisions and maintains responder accounts. Only
// admins reach it; the route policy enforces that.
type ResponderService struct {
	users identityrepo.UserRepository
}

func NewResponderService(users identityrepo.UserRepository) *ResponderService {
	return &ResponderService{users: users}
}

// CreateResponderInput represents input for provisioning a responder.
type CreateResponderInput struct {
	Name      string
	Email     string
	Password  string
	Expertise []string
}

// UpdateResponderInput represents a responder profile update. Nil
// fields are left unchanged; Password, when set, is re-hashed.
type UpdateResponderInput struct {
	Name      *string
	Email     *string
	Expertise []string
	Active    *bool
	Password  *string
}

// Create provisions a new responder account.
func (s *ResponderService) Create(ctx context.Context, input CreateResponderInput) (*identityrepo.User, error) {
	if err := identityservice.ValidateName(input.Name); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := identityservice.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := identityservice.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := identityservice.ValidateExpertise(input.Expertise); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("hash password failed: %w", err), pkgerrors.InternalServerError)
	}

	responder := &identityrepo.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         identityrepo.UserRoleResponder,
		Expertise:    input.Expertise,
		Active:       true,
	}
	responderID, err := s.users.Create(ctx, nil, responder)
	if err != nil {
		if stderrors.Is(err, identityrepo.ErrEmailExists) {
			return nil, pkgerrors.New(pkgerrors.EmailAlreadyExists)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("create responder failed: %w", err), pkgerrors.ResponderCreateFailed)
	}
	responder.ID = responderID
	return responder, nil
}

// List returns responders matching the filter.
func (s *ResponderService) List(ctx context.Context, filter identityrepo.ResponderFilter) ([]*identityrepo.User, error) {
	if filter.Expertise != "" {
		if err := identityservice.ValidateExpertise([]string{filter.Expertise}); err != nil {
			return nil, err
		}
	}
	responders, err := s.users.ListResponders(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("list responders failed: %w", err), pkgerrors.DatabaseError)
	}
	return responders, nil
}

// Get returns one responder by id.
func (s *ResponderService) Get(ctx context.Context, id int64) (*identityrepo.User, error) {
	responder, err := s.getResponder(ctx, id)
	if err != nil {
		return nil, err
	}
	return responder, nil
}

// Update applies a partial update to a responder profile.
func (s *ResponderService) Update(ctx context.Context, id int64, input UpdateResponderInput) (*identityrepo.User, error) {
	responder, err := s.getResponder(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := identityservice.ValidateName(*input.Name); err != nil {
			return nil, err
		}
		responder.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := identityservice.ValidateEmail(email); err != nil {
			return nil, err
		}
		responder.Email = email
	}
	if input.Expertise != nil {
		if err := identityservice.ValidateExpertise(input.Expertise); err != nil {
			return nil, err
		}
		responder.Expertise = input.Expertise
	}
	if input.Active != nil {
		responder.Active = *input.Active
	}

	// Validate every input before the first write so a rejected field
	// leaves the record untouched.
	var passwordHash []byte
	if input.Password != nil {
		if err := identityservice.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		passwordHash, err = bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, pkgerrors.Wrap(fmt.Errorf("hash password failed: %w", err), pkgerrors.InternalServerError)
		}
	}

	if err := s.users.Update(ctx, nil, responder); err != nil {
		if stderrors.Is(err, identityrepo.ErrEmailExists) {
			return nil, pkgerrors.New(pkgerrors.EmailAlreadyExists)
		}
		if stderrors.Is(err, identityrepo.ErrUserNotFound) {
			return nil, pkgerrors.New(pkgerrors.ResponderNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("update responder failed: %w", err), pkgerrors.ResponderUpdateFailed)
	}

	if passwordHash != nil {
		if err := s.users.UpdatePassword(ctx, nil, id, string(passwordHash)); err != nil {
			return nil, pkgerrors.Wrap(fmt.Errorf("update responder password failed: %w", err), pkgerrors.ResponderUpdateFailed)
		}
	}

	return s.getResponder(ctx, id)
}

func (s *ResponderService) getResponder(ctx context.Context, id int64) (*identityrepo.User, error) {
	user, err := s.users.GetByID(ctx, nil, id)
	if err != nil {
		if stderrors.Is(err, identityrepo.ErrUserNotFound) {
			return nil, pkgerrors.New(pkgerrors.ResponderNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("get responder failed: %w", err), pkgerrors.DatabaseError)
	}
	if user.Role != identityrepo.UserRoleResponder {
		return nil, pkgerrors.New(pkgerrors.TargetNotResponder)
	}
	return user, nil
}
