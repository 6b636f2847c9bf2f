package errors

import (
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{Success, http.StatusOK},
		{InternalServerError, http.StatusInternalServerError},
		{InvalidParams, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{TooManyRequests, http.StatusTooManyRequests},
		{ServiceUnavailable, http.StatusServiceUnavailable},

		{InvalidCredentials, http.StatusUnauthorized},
		{TokenExpired, http.StatusUnauthorized},
		{UserNotFound, http.StatusNotFound},
		{EmailAlreadyExists, http.StatusBadRequest},
		{InvalidEmail, http.StatusBadRequest},
		{InvalidRole, http.StatusBadRequest},

		{QuestionNotFound, http.StatusNotFound},
		{TitleRequired, http.StatusBadRequest},
		{ContentRequired, http.StatusBadRequest},
		{AnswerRequired, http.StatusBadRequest},

		{QuestionAlreadyClaimed, http.StatusConflict},
		{QuestionNotPending, http.StatusConflict},
		{QuestionAlreadyAnswered, http.StatusConflict},
		{QuestionNotAnswered, http.StatusConflict},
		{QuestionClosed, http.StatusConflict},
		{TransitionConflict, http.StatusConflict},

		{NotQuestionResponder, http.StatusForbidden},
		{ResponderNotFound, http.StatusNotFound},
		{TargetNotResponder, http.StatusBadRequest},
		{InvalidExpertise, http.StatusBadRequest},

		{ValidationFailed, http.StatusBadRequest},
		{DatabaseError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("code %d: expected status %d, got %d", tc.code, tc.want, got)
		}
	}
}

func TestMessageFallback(t *testing.T) {
	if QuestionAlreadyClaimed.Message() == "" {
		t.Fatalf("expected message for known code")
	}
	if ErrorCode(99999).Message() != "Unknown error" {
		t.Fatalf("expected fallback message for unknown code")
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(QuestionAlreadyClaimed).WithDetail("observed_status", "assigned")
	if !Is(err, QuestionAlreadyClaimed) {
		t.Fatalf("expected Is to match wrapped code")
	}
	if GetCode(err) != QuestionAlreadyClaimed {
		t.Fatalf("unexpected code: %d", GetCode(err))
	}
	if GetCode(nil) != Success {
		t.Fatalf("expected Success for nil error")
	}
}
