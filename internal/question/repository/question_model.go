package repository

import "time"

type QuestionStatus string

const (
	StatusPending    QuestionStatus = "pending"
	StatusAssigned   QuestionStatus = "assigned"
	StatusInProgress QuestionStatus = "inProgress"
	StatusAnswered   QuestionStatus = "answered"
	StatusClosed     QuestionStatus = "closed"
)

// KnownStatus reports whether s is a valid lifecycle status.
func KnownStatus(s QuestionStatus) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusAnswered, StatusClosed:
		return true
	}
	return false
}

// Question is a single asker question moving through the lifecycle
// pending → assigned → inProgress → answered → closed.
type Question struct {
	ID          int64
	Title       string
	Content     string
	AskerID     int64
	ResponderID *int64
	Status      QuestionStatus
	IsPublic    bool
	IsAnonymous bool

	AnswerContent *string
	AnsweredAt    *time.Time
	AssignedAt    *time.Time
	ClosedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Answered reports whether an answer has been recorded.
func (q *Question) Answered() bool {
	return q.AnswerContent != nil && *q.AnswerContent != ""
}
