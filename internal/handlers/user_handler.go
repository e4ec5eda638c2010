package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountflow/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// @Summary      Get user
// @Description  Returns the public projection of a user
// @Tags         Users
// @Produce      json
// @Param        id   path      string  true  "User ID (UUID)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/user/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.service.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidUserID):
			jsonError(c, http.StatusBadRequest, "Invalid user ID")
		case errors.Is(err, services.ErrUserNotFound):
			jsonError(c, http.StatusNotFound, "User not found")
		default:
			internalError(c, "[user][get]", err, msgInternal)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Public()})
}

// @Summary      Current user
// @Description  Returns the user behind the session cookie or bearer token
// @Tags         Users
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := sessionUserID(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := h.service.GetUserByID(c.Request.Context(), id.String())
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			// session outlived the account
			jsonError(c, http.StatusNotFound, "User not found")
			return
		}
		internalError(c, "[user][me]", err, msgInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Public()})
}
