package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	"github.com/tigabum/christian-platform/internal/question/repository"
	pkgerrors "github.com/tigabum/christian-platform/pkg/errors"
)

// Claim identifies the authenticated caller of a lifecycle operation.
type Claim struct {
	UserID int64
	Role   identityrepo.UserRole
}

func (c Claim) isAdmin() bool     { return c.Role == identityrepo.UserRoleAdmin }
func (c Claim) isResponder() bool { return c.Role == identityrepo.UserRoleResponder }

// LifecycleService is the only writer of a question's status, responder
// and answer. Every transition is a single conditional update in the
// repository; when the update moves zero rows the service re-reads the
// question to report why.
type LifecycleService struct {
	questions  repository.QuestionRepository
	activities repository.ActivityRepository
	users      identityrepo.UserRepository
	publisher  *StatusEventPublisher
}

// NewLifecycleService creates a new LifecycleService. The publisher is
// optional.
func NewLifecycleService(
	questions repository.QuestionRepository,
	activities repository.ActivityRepository,
	users identityrepo.UserRepository,
	publisher *StatusEventPublisher,
) *LifecycleService {
	return &LifecycleService{
		questions:  questions,
		activities: activities,
		users:      users,
		publisher:  publisher,
	}
}

// CreateInput represents input for creating a question.
type CreateInput struct {
	Title       string
	Content     string
	IsPublic    bool
	IsAnonymous bool
}

// Create submits a new pending question for the asker.
func (s *LifecycleService) Create(ctx context.Context, claim Claim, input CreateInput) (*repository.Question, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.TitleRequired)
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.ContentRequired)
	}

	question := &repository.Question{
		Title:       title,
		Content:     content,
		AskerID:     claim.UserID,
		Status:      repository.StatusPending,
		IsPublic:    input.IsPublic,
		IsAnonymous: input.IsAnonymous,
	}
	id, err := s.questions.Create(ctx, nil, question)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("create question failed: %w", err), pkgerrors.QuestionCreateFailed)
	}

	created, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, repository.ActivityQuestionCreated, created, nil)
	return created, nil
}

// Get returns a question by id.
func (s *LifecycleService) Get(ctx context.Context, id int64) (*repository.Question, error) {
	return s.get(ctx, id)
}

// ListPublic returns publicly listed questions.
func (s *LifecycleService) ListPublic(ctx context.Context, limit, offset int) ([]*repository.Question, error) {
	questions, err := s.questions.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("list public questions failed: %w", err), pkgerrors.DatabaseError)
	}
	return questions, nil
}

// ListMine returns the asker's own questions.
func (s *LifecycleService) ListMine(ctx context.Context, claim Claim) ([]*repository.Question, error) {
	questions, err := s.questions.ListByAsker(ctx, claim.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("list asker questions failed: %w", err), pkgerrors.DatabaseError)
	}
	return questions, nil
}

// Worklist returns the responder's queue, narrowed by the caller-facing
// status filter.
func (s *LifecycleService) Worklist(ctx context.Context, claim Claim, filter string) ([]*repository.Question, error) {
	statuses, err := WorklistStatuses(filter)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.ListWorklist(ctx, claim.UserID, statuses)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("list worklist failed: %w", err), pkgerrors.DatabaseError)
	}
	return questions, nil
}

// Assign attaches a responder to a pending question on behalf of an
// admin.
func (s *LifecycleService) Assign(ctx context.Context, claim Claim, id, responderID int64) (*repository.Question, error) {
	if !claim.isAdmin() {
		return nil, pkgerrors.ForbiddenError("admin role required")
	}

	target, err := s.users.GetByID(ctx, nil, responderID)
	if err != nil {
		if stderrors.Is(err, identityrepo.ErrUserNotFound) {
			return nil, pkgerrors.New(pkgerrors.ResponderNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("get responder failed: %w", err), pkgerrors.DatabaseError)
	}
	if target.Role != identityrepo.UserRoleResponder {
		return nil, pkgerrors.New(pkgerrors.TargetNotResponder)
	}

	return s.claimFor(ctx, repository.ActivityQuestionAssigned, id, target.ID, &target.Name)
}

// ClaimQuestion lets a responder self-assign a pending question.
func (s *LifecycleService) ClaimQuestion(ctx context.Context, claim Claim, id int64) (*repository.Question, error) {
	if !claim.isResponder() {
		return nil, pkgerrors.ForbiddenError("responder role required")
	}
	return s.claimFor(ctx, repository.ActivityQuestionAssigned, id, claim.UserID, nil)
}

// BeginWork moves the caller's assigned question to inProgress.
func (s *LifecycleService) BeginWork(ctx context.Context, claim Claim, id int64) (*repository.Question, error) {
	applied, err := s.questions.Begin(ctx, nil, id, claim.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("begin work failed: %w", err), pkgerrors.DatabaseError)
	}
	if !applied {
		return nil, s.explainResponderFailure(ctx, id, claim.UserID, repository.StatusAssigned)
	}

	question, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, repository.ActivityQuestionStarted, question, nil)
	return question, nil
}

// SubmitAnswer records the answer exactly once, from assigned or
// inProgress, only for the recorded responder.
func (s *LifecycleService) SubmitAnswer(ctx context.Context, claim Claim, id int64, content string) (*repository.Question, error) {
	answer := strings.TrimSpace(content)
	if answer == "" {
		return nil, pkgerrors.New(pkgerrors.AnswerRequired)
	}

	applied, err := s.questions.Answer(ctx, nil, id, claim.UserID, answer)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("submit answer failed: %w", err), pkgerrors.DatabaseError)
	}
	if !applied {
		return nil, s.explainAnswerFailure(ctx, id, claim.UserID)
	}

	question, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, repository.ActivityQuestionAnswered, question, s.responderName(ctx, claim.UserID))
	return question, nil
}

// CloseQuestion moves an answered question to the terminal closed
// state. Allowed for an admin or the recorded responder.
func (s *LifecycleService) CloseQuestion(ctx context.Context, claim Claim, id int64) (*repository.Question, error) {
	question, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !claim.isAdmin() {
		if question.ResponderID == nil || *question.ResponderID != claim.UserID {
			return nil, pkgerrors.New(pkgerrors.NotQuestionResponder)
		}
	}

	applied, err := s.questions.Close(ctx, nil, id)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("close question failed: %w", err), pkgerrors.DatabaseError)
	}
	if !applied {
		return nil, s.explainCloseFailure(ctx, id)
	}

	closed, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, repository.ActivityQuestionClosed, closed, nil)
	return closed, nil
}

func (s *LifecycleService) claimFor(ctx context.Context, activityType string, id, responderID int64, responderName *string) (*repository.Question, error) {
	applied, err := s.questions.Assign(ctx, nil, id, responderID)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("assign question failed: %w", err), pkgerrors.DatabaseError)
	}
	if !applied {
		return nil, s.explainClaimFailure(ctx, id)
	}

	question, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if responderName == nil {
		responderName = s.responderName(ctx, responderID)
	}
	s.recordActivity(ctx, activityType, question, responderName)
	return question, nil
}

func (s *LifecycleService) get(ctx context.Context, id int64) (*repository.Question, error) {
	question, err := s.questions.GetByID(ctx, nil, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrQuestionNotFound) {
			return nil, pkgerrors.New(pkgerrors.QuestionNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("get question failed: %w", err), pkgerrors.DatabaseError)
	}
	return question, nil
}

// explainClaimFailure reports why a conditional assign moved no rows.
// Any non-pending state, or an already-set responder, is the claim race
// the engine exists to lose gracefully.
func (s *LifecycleService) explainClaimFailure(ctx context.Context, id int64) error {
	question, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.QuestionAlreadyClaimed).
		WithDetail("observed_status", string(question.Status))
}

// explainResponderFailure distinguishes a wrong caller from a lost
// status race for transitions that require the recorded responder.
func (s *LifecycleService) explainResponderFailure(ctx context.Context, id, callerID int64, expected repository.QuestionStatus) error {
	question, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if question.ResponderID != nil && *question.ResponderID != callerID {
		return pkgerrors.New(pkgerrors.NotQuestionResponder)
	}
	if question.ResponderID == nil {
		return pkgerrors.New(pkgerrors.QuestionNotPending).
			WithMessage("question has not been claimed yet")
	}
	return pkgerrors.ConflictError(string(expected), string(question.Status))
}

func (s *LifecycleService) explainAnswerFailure(ctx context.Context, id, callerID int64) error {
	question, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if question.ResponderID != nil && *question.ResponderID != callerID {
		return pkgerrors.New(pkgerrors.NotQuestionResponder)
	}
	switch question.Status {
	case repository.StatusAnswered:
		return pkgerrors.New(pkgerrors.QuestionAlreadyAnswered)
	case repository.StatusClosed:
		return pkgerrors.New(pkgerrors.QuestionClosed)
	case repository.StatusPending:
		return pkgerrors.New(pkgerrors.QuestionNotPending).
			WithMessage("question has not been claimed yet")
	}
	if question.Answered() {
		return pkgerrors.New(pkgerrors.QuestionAlreadyAnswered)
	}
	return pkgerrors.ConflictError(string(repository.StatusInProgress), string(question.Status))
}

func (s *LifecycleService) explainCloseFailure(ctx context.Context, id int64) error {
	question, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if question.Status == repository.StatusClosed {
		return pkgerrors.New(pkgerrors.QuestionClosed)
	}
	return pkgerrors.New(pkgerrors.QuestionNotAnswered)
}

func (s *LifecycleService) responderName(ctx context.Context, responderID int64) *string {
	responder, err := s.users.GetByID(ctx, nil, responderID)
	if err != nil {
		return nil
	}
	return &responder.Name
}
