package controller

import (
	"strconv"
	"time"

	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	"github.com/tigabum/christian-platform/internal/question/repository"
	"github.com/tigabum/christian-platform/internal/question/service"
	"github.com/tigabum/christian-platform/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// QuestionController handles question lifecycle HTTP endpoints.
type QuestionController struct {
	lifecycle *service.LifecycleService
}

// NewQuestionController creates a new QuestionController.
func NewQuestionController(lifecycle *service.LifecycleService) *QuestionController {
	return &QuestionController{lifecycle: lifecycle}
}

// Create handles question submission by an asker.
func (h *QuestionController) Create(c *gin.Context) {
	claim, ok := claimFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	question, err := h.lifecycle.Create(c.Request.Context(), claim, service.CreateInput{
		Title:       req.Title,
		Content:     req.Content,
		IsPublic:    req.IsPublic,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toQuestionResponse(question, claim))
}

// ListPublic returns the public question feed. No authentication is
// required; anonymous askers stay masked.
func (h *QuestionController) ListPublic(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	claim, _ := claimFromContext(c)
	questions, err := h.lifecycle.ListPublic(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toQuestionResponses(questions, claim))
}

// ListMine returns the authenticated asker's own questions.
func (h *QuestionController) ListMine(c *gin.Context) {
	claim, ok := claimFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	questions, err := h.lifecycle.ListMine(c.Request.Context(), claim)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toQuestionResponses(questions, claim))
}

// Worklist returns the responder's queue, optionally filtered by the
// status vocabulary all|pending|assigned|answered.
func (h *QuestionController) Worklist(c *gin.Context) {
	claim, ok := claimFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	questions, err := h.lifecycle.Worklist(c.Request.Context(), claim, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toQuestionResponses(questions, claim))
}

// Get returns one question by id.
func (h *QuestionController) Get(c *gin.Context) {
	claim, ok := claimFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := questionID(c)
	if !ok {
		response.BadRequest(c, "Invalid question id")
		return
	}

	question, err := h.lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toQuestionResponse(question, claim))
}

// Claim handles responder self-assignment of a pending question.
func (h *QuestionController) Claim(c *gin.Context) {
	h.transition(c, func(claim service.Claim, id int64) (*repository.Question, error) {
		return h.lifecycle.ClaimQuestion(c.Request.Context(), claim, id)
	})
}

// Begin marks the caller's assigned question as in progress.
func (h *QuestionController) Begin(c *gin.Context) {
	h.transition(c, func(claim service.Claim, id int64) (*repository.Question, error) {
		return h.lifecycle.BeginWork(c.Request.Context(), claim, id)
	})
}

// Answer records the responder's answer.
func (h *QuestionController) Answer(c *gin.Context) {
	claim, ok := claimFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := questionID(c)
	if !ok {
		response.BadRequest(c, "Invalid question id")
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	question, err := h.lifecycle.SubmitAnswer(c.Request.Context(), claim, id, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toQuestionResponse(question, claim))
}

// Close moves an answered question to closed.
func (h *QuestionController) Close(c *gin.Context) {
	h.transition(c, func(claim service.Claim, id int64) (*repository.Question, error) {
		return h.lifecycle.CloseQuestion(c.Request.Context(), claim, id)
	})
}

func (h *QuestionController) transition(c *gin.Context, apply func(service.Claim, int64) (*repository.Question, error)) {
	claim, ok := claimFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := questionID(c)
	if !ok {
		response.BadRequest(c, "Invalid question id")
		return
	}

	question, err := apply(claim, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toQuestionResponse(question, claim))
}

// CreateQuestionRequest defines the submission payload.
type CreateQuestionRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	IsPublic    bool   `json:"is_public"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// AnswerRequest defines the answer payload.
type AnswerRequest struct {
	Content string `json:"content" binding:"required"`
}

// QuestionResponse defines the question payload. AskerID is zeroed for
// anonymous questions unless the viewer is the asker or an admin.
type QuestionResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	AskerID       int64      `json:"asker_id,omitempty"`
	ResponderID   *int64     `json:"responder_id,omitempty"`
	Status        string     `json:"status"`
	IsPublic      bool       `json:"is_public"`
	IsAnonymous   bool       `json:"is_anonymous"`
	AnswerContent *string    `json:"answer_content,omitempty"`
	AnsweredAt    *time.Time `json:"answered_at,omitempty"`
	AssignedAt    *time.Time `json:"assigned_at,omitempty"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toQuestionResponse(question *repository.Question, viewer service.Claim) QuestionResponse {
	resp := QuestionResponse{
		ID:            question.ID,
		Title:         question.Title,
		Content:       question.Content,
		AskerID:       question.AskerID,
		ResponderID:   question.ResponderID,
		Status:        string(question.Status),
		IsPublic:      question.IsPublic,
		IsAnonymous:   question.IsAnonymous,
		AnswerContent: question.AnswerContent,
		AnsweredAt:    question.AnsweredAt,
		AssignedAt:    question.AssignedAt,
		ClosedAt:      question.ClosedAt,
		CreatedAt:     question.CreatedAt,
	}
	if question.IsAnonymous && !viewerMaySeeAsker(question, viewer) {
		resp.AskerID = 0
	}
	return resp
}

func toQuestionResponses(questions []*repository.Question, viewer service.Claim) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, toQuestionResponse(question, viewer))
	}
	return responses
}

func viewerMaySeeAsker(question *repository.Question, viewer service.Claim) bool {
	if viewer.UserID == 0 {
		return false
	}
	if viewer.Role == identityrepo.UserRoleAdmin {
		return true
	}
	return viewer.UserID == question.AskerID
}

func claimFromContext(c *gin.Context) (service.Claim, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return service.Claim{}, false
	}
	userID, ok := value.(int64)
	if !ok {
		return service.Claim{}, false
	}
	role, _ := c.Get("user_role")
	roleStr, _ := role.(string)
	return service.Claim{UserID: userID, Role: identityrepo.UserRole(roleStr)}, true
}

func questionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
