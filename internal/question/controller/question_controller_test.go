package controller

import (
	"testing"

	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	"github.com/tigabum/christian-platform/internal/question/repository"
	"github.com/tigabum/christian-platform/internal/question/service"
)

func anonymousQuestion() *repository.Question {
	return &repository.Question{
		ID:          1,
		Title:       "Private matter",
		Content:     "Needs discretion.",
		AskerID:     42,
		Status:      repository.StatusPending,
		IsAnonymous: true,
	}
}

func TestAnonymousQuestionHidesAskerFromStrangers(t *testing.T) {
	question := anonymousQuestion()

	public := toQuestionResponse(question, service.Claim{})
	if public.AskerID != 0 {
		t.Fatalf("expected asker hidden from anonymous viewer, got %d", public.AskerID)
	}

	responder := toQuestionResponse(question, service.Claim{UserID: 7, Role: identityrepo.UserRoleResponder})
	if responder.AskerID != 0 {
		t.Fatalf("expected asker hidden from responder, got %d", responder.AskerID)
	}
}

func TestAnonymousQuestionVisibleToAskerAndAdmin(t *testing.T) {
	question := anonymousQuestion()

	own := toQuestionResponse(question, service.Claim{UserID: 42, Role: identityrepo.UserRoleAsker})
	if own.AskerID != 42 {
		t.Fatalf("expected asker to see own id, got %d", own.AskerID)
	}

	admin := toQuestionResponse(question, service.Claim{UserID: 9, Role: identityrepo.UserRoleAdmin})
	if admin.AskerID != 42 {
		t.Fatalf("expected admin to see asker id, got %d", admin.AskerID)
	}
}

func TestNamedQuestionKeepsAsker(t *testing.T) {
	question := anonymousQuestion()
	question.IsAnonymous = false

	resp := toQuestionResponse(question, service.Claim{})
	if resp.AskerID != 42 {
		t.Fatalf("expected asker id on named question, got %d", resp.AskerID)
	}
}
