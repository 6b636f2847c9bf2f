package controller

import (
	"github.com/tigabum/christian-platform/internal/identity/service"
	"github.com/tigabum/christian-platform/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// UserController handles user directory endpoints.
type UserController struct {
	userService *service.UserService
}

// NewUserController creates a new UserController.
func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// ListResponders returns the public directory of active responders.
func (h *UserController) ListResponders(c *gin.Context) {
	responders, err := h.userService.ResponderDirectory(c.Request.Context(), c.Query("expertise"))
	if err != nil {
		response.Error(c, err)
		return
	}

	profiles := make([]UserProfile, 0, len(responders))
	for _, responder := range responders {
		profiles = append(profiles, toUserProfile(responder))
	}
	response.Success(c, profiles)
}
