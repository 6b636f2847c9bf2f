package service

import (
	"regexp"
	"strings"

	"github.com/tigabum/christian-platform/internal/identity/repository"
	pkgerrors "github.com/tigabum/christian-platform/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ExpertiseTags is the controlled vocabulary for responder expertise.
var ExpertiseTags = []string{
	"Technology",
	"Health",
	"Education",
	"Business",
	"Lifestyle",
	"Biblical Studies",
	"Old Testament",
	"New Testament",
	"Theology",
	"Pastoral",
	"Counseling",
	"Church Administration",
	"Church History",
	"Church Music",
	"Church Policy",
	"Church Social Issues",
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return pkgerrors.New(pkgerrors.InvalidEmail)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 || len(password) > 128 {
		return pkgerrors.New(pkgerrors.InvalidPassword)
	}
	return nil
}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.InvalidName)
	}
	if len(name) > 100 {
		return pkgerrors.New(pkgerrors.InvalidName)
	}
	return nil
}

func ValidateRole(role repository.UserRole) error {
	switch role {
	case repository.UserRoleAsker, repository.UserRoleResponder, repository.UserRoleAdmin:
		return nil
	default:
		return pkgerrors.New(pkgerrors.InvalidRole)
	}
}

// ValidateExpertise checks every tag against the controlled vocabulary.
func ValidateExpertise(tags []string) error {
	for _, tag := range tags {
		if !isKnownExpertise(tag) {
			return pkgerrors.New(pkgerrors.InvalidExpertise).WithDetail("tag", tag)
		}
	}
	return nil
}

func isKnownExpertise(tag string) bool {
	for _, known := range ExpertiseTags {
		if known == tag {
			return true
		}
	}
	return false
}
