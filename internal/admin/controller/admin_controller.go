package controller

import (
	"strconv"
	"time"

	adminservice "github.com/tigabum/christian-platform/internal/admin/service"
	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	questionrepo "github.com/tigabum/christian-platform/internal/question/repository"
	questionservice "github.com/tigabum/christian-platform/internal/question/service"
	"github.com/tigabum/christian-platform/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// AdminController handles responder management, directed assignment and
// the dashboard. All routes sit behind the admin role policy.
type AdminController struct {
	responders *adminservice.ResponderService
	dashboard  *adminservice.DashboardService
	lifecycle  *questionservice.LifecycleService
}

// NewAdminController creates a new AdminController.
func NewAdminController(
	responders *adminservice.ResponderService,
	dashboard *adminservice.DashboardService,
	lifecycle *questionservice.LifecycleService,
) *AdminController {
	return &AdminController{
		responders: responders,
		dashboard:  dashboard,
		lifecycle:  lifecycle,
	}
}

// CreateResponder provisions a responder account.
func (h *AdminController) CreateResponder(c *gin.Context) {
	var req CreateResponderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	responder, err := h.responders.Create(c.Request.Context(), adminservice.CreateResponderInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Expertise: req.Expertise,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toResponderResponse(responder))
}

// ListResponders lists responders, filtered by status, search text and
// expertise.
func (h *AdminController) ListResponders(c *gin.Context) {
	responders, err := h.responders.List(c.Request.Context(), identityrepo.ResponderFilter{
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		Expertise: c.Query("expertise"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := make([]ResponderResponse, 0, len(responders))
	for _, responder := range responders {
		payload = append(payload, toResponderResponse(responder))
	}
	response.Success(c, payload)
}

// GetResponder returns one responder.
func (h *AdminController) GetResponder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.BadRequest(c, "Invalid responder id")
		return
	}

	responder, err := h.responders.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toResponderResponse(responder))
}

// UpdateResponder applies a partial responder profile update.
func (h *AdminController) UpdateResponder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.BadRequest(c, "Invalid responder id")
		return
	}

	var req UpdateResponderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	responder, err := h.responders.Update(c.Request.Context(), id, adminservice.UpdateResponderInput{
		Name:      req.Name,
		Email:     req.Email,
		Expertise: req.Expertise,
		Active:    req.Active,
		Password:  req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toResponderResponse(responder))
}

// AssignQuestion attaches a responder to a pending question.
func (h *AdminController) AssignQuestion(c *gin.Context) {
	claim, ok := adminClaim(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		response.BadRequest(c, "Invalid question id")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	question, err := h.lifecycle.Assign(c.Request.Context(), claim, id, req.ResponderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toQuestionSummary(question))
}

// DashboardStats returns the admin overview snapshot.
func (h *AdminController) DashboardStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// DashboardActivities returns the recent activity feed.
func (h *AdminController) DashboardActivities(c *gin.Context) {
	activities, err := h.dashboard.Activities(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := make([]ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		payload = append(payload, toActivityResponse(activity))
	}
	response.Success(c, payload)
}

// CreateResponderRequest defines the provisioning payload.
type CreateResponderRequest struct {
	Name      string   `json:"name" binding:"required"`
	Email     string   `json:"email" binding:"required"`
	Password  string   `json:"password" binding:"required"`
	Expertise []string `json:"expertise" binding:"required"`
}

// UpdateResponderRequest defines the partial update payload.
type UpdateResponderRequest struct {
	Name      *string  `json:"name"`
	Email     *string  `json:"email"`
	Expertise []string `json:"expertise"`
	Active    *bool    `json:"active"`
	Password  *string  `json:"password"`
}

// AssignRequest defines the directed assignment payload.
type AssignRequest struct {
	ResponderID int64 `json:"responder_id" binding:"required"`
}

// ResponderResponse defines the responder payload.
type ResponderResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Expertise []string  `json:"expertise"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityResponse defines one activity feed entry.
type ActivityResponse struct {
	ID            int64     `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	AskerName     string    `json:"asker_name"`
	ResponderID   *int64    `json:"responder_id,omitempty"`
	ResponderName *string   `json:"responder_name,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toResponderResponse(responder *identityrepo.User) ResponderResponse {
	return ResponderResponse{
		ID:        responder.ID,
		Name:      responder.Name,
		Email:     responder.Email,
		Expertise: responder.Expertise,
		Active:    responder.Active,
		CreatedAt: responder.CreatedAt,
	}
}

func toActivityResponse(activity *questionrepo.Activity) ActivityResponse {
	return ActivityResponse{
		ID:            activity.ID,
		Type:          activity.Type,
		Title:         activity.Title,
		AskerName:     activity.AskerName,
		ResponderID:   activity.ResponderID,
		ResponderName: activity.ResponderName,
		Status:        string(activity.Status),
		CreatedAt:     activity.CreatedAt,
	}
}

// QuestionSummary defines the question payload returned from directed
// assignment.
type QuestionSummary struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	AskerID     int64      `json:"asker_id"`
	ResponderID *int64     `json:"responder_id,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toQuestionSummary(question *questionrepo.Question) QuestionSummary {
	return QuestionSummary{
		ID:          question.ID,
		Title:       question.Title,
		Status:      string(question.Status),
		AskerID:     question.AskerID,
		ResponderID: question.ResponderID,
		AssignedAt:  question.AssignedAt,
		CreatedAt:   question.CreatedAt,
	}
}

func adminClaim(c *gin.Context) (questionservice.Claim, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return questionservice.Claim{}, false
	}
	userID, ok := value.(int64)
	if !ok {
		return questionservice.Claim{}, false
	}
	role, _ := c.Get("user_role")
	roleStr, _ := role.(string)
	return questionservice.Claim{UserID: userID, Role: identityrepo.UserRole(roleStr)}, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
