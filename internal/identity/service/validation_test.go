package service_test

import (
	"strings"
	"testing"

	"github.com/tigabum/christian-platform/internal/identity/repository"
	"github.com/tigabum/christian-platform/internal/identity/service"
	pkgerrors "github.com/tigabum/christian-platform/pkg/errors"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "ruth.smith@church.example.org", "tag+filter@example.com"}
	for _, email := range valid {
		if err := service.ValidateEmail(email); err != nil {
			t.Fatalf("expected %q to be valid: %v", email, err)
		}
	}
	invalid := []string{"", "plain", "a@b", "with space@example.com", "@example.com"}
	for _, email := range invalid {
		assertCode(t, service.ValidateEmail(email), pkgerrors.InvalidEmail)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := service.ValidatePassword("secret"); err != nil {
		t.Fatalf("expected six characters to pass: %v", err)
	}
	assertCode(t, service.ValidatePassword("five5"), pkgerrors.InvalidPassword)
	assertCode(t, service.ValidatePassword(strings.Repeat("x", 129)), pkgerrors.InvalidPassword)
}

func TestValidateName(t *testing.T) {
	if err := service.ValidateName("Ruth"); err != nil {
		t.Fatalf("expected valid name: %v", err)
	}
	assertCode(t, service.ValidateName("   "), pkgerrors.InvalidName)
	assertCode(t, service.ValidateName(strings.Repeat("n", 101)), pkgerrors.InvalidName)
}

func TestValidateRole(t *testing.T) {
	for _, role := range []repository.UserRole{repository.UserRoleAsker, repository.UserRoleResponder, repository.UserRoleAdmin} {
		if err := service.ValidateRole(role); err != nil {
			t.Fatalf("expected role %q to be valid: %v", role, err)
		}
	}
	assertCode(t, service.ValidateRole("superuser"), pkgerrors.InvalidRole)
}

func TestValidateExpertise(t *testing.T) {
	if err := service.ValidateExpertise([]string{"Theology", "Church History"}); err != nil {
		t.Fatalf("expected known tags to pass: %v", err)
	}
	if err := service.ValidateExpertise(nil); err != nil {
		t.Fatalf("expected empty list to pass: %v", err)
	}
	assertCode(t, service.ValidateExpertise([]string{"Theology", "Astrology"}), pkgerrors.InvalidExpertise)
}
