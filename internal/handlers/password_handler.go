package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountflow/internal/models"
	"accountflow/internal/services"
)

type PasswordHandler struct {
	resets services.PasswordResetService
}

func NewPasswordHandler(resets services.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

// @Summary      Request a password reset
// @Description  Always answers the same way whether or not the email is registered
// @Tags         Password
// @Accept       json
// @Produce      json
// @Param        body  body      models.ForgotPasswordRequest  true  "Email"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      429   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /api/forgotpassword [post]
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Info("[password-reset][request] bad request: bind json failed", "error", err)
		jsonError(c, http.StatusBadRequest, msgBadBody)
		return
	}

	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		if msg, ok := validationMessage(err); ok {
			jsonError(c, http.StatusBadRequest, msg)
			return
		}
		internalError(c, "[password-reset][request]", err, msgInternalLower)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "If that email exists, a reset link has been sent.",
	})
}

// @Summary      Reset password
// @Description  Redeems a reset token and sets a new password
// @Tags         Password
// @Accept       json
// @Produce      json
// @Param        token  path      string                       true  "Reset token"
// @Param        body   body      models.ResetPasswordRequest  true  "New password"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Failure      500    {object}  map[string]interface{}
// @Router       /api/forgotpassword/{token} [post]
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	token := c.Param("token")

	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Info("[password-reset][reset] bad request: bind json failed", "error", err)
		jsonError(c, http.StatusBadRequest, msgBadBody)
		return
	}

	err := h.resets.ResetPassword(c.Request.Context(), token, req.Password)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			jsonError(c, http.StatusBadRequest, msg)
			return
		}
		switch {
		case errors.Is(err, services.ErrResetTokenRequired):
			jsonError(c, http.StatusBadRequest, "Reset token is required")
		case errors.Is(err, services.ErrResetTokenUnknown):
			jsonError(c, http.StatusBadRequest, "User not found with this token")
		case errors.Is(err, services.ErrResetLinkInvalid):
			jsonError(c, http.StatusBadRequest, "Invalid or expired reset link")
		default:
			internalError(c, "[password-reset][reset]", err, msgInternalLower)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password Successfully reset. You can now log in.",
	})
}
