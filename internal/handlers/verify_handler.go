package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountflow/internal/services"
)

type VerifyHandler struct {
	verification services.VerificationService
}

func NewVerifyHandler(s services.VerificationService) *VerifyHandler {
	return &VerifyHandler{verification: s}
}

// @Summary      Verify email
// @Description  Redeems the token from the verification email. No session needed.
// @Tags         Auth
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Failure      500    {object}  map[string]interface{}
// @Router       /api/verifytoken/{token} [post]
func (h *VerifyHandler) VerifyToken(c *gin.Context) {
	err := h.verification.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVerifyTokenRequired):
			jsonError(c, http.StatusBadRequest, "Verification token is required")
		// A wrong or replayed token misses the lookup and gets the
		// combined wording. "Invalid or expired verification link" only
		// follows a token mismatch after a successful lookup.
		case errors.Is(err, services.ErrVerifyTokenUnknown):
			jsonError(c, http.StatusBadRequest, "Invalid, expired verification link or Already verified")
		case errors.Is(err, services.ErrVerifyLinkInvalid):
			jsonError(c, http.StatusBadRequest, "Invalid or expired verification link")
		case errors.Is(err, services.ErrAlreadyVerified):
			jsonError(c, http.StatusBadRequest, "User already verified")
		case errors.Is(err, services.ErrVerifyLinkExpired):
			jsonError(c, http.StatusBadRequest, "Verification link has expired")
		default:
			internalError(c, "[verify]", err, msgInternal)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User verified successfully"})
}
