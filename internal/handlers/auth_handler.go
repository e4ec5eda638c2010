package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountflow/internal/models"
	"accountflow/internal/services"
)

const SessionCookie = "accessToken"

// CookieOptions controls how the session cookie is written.
type CookieOptions struct {
	MaxAge int // seconds
	Secure bool
}

type AuthHandler struct {
	userService services.UserService
	cookie      CookieOptions
}

func NewAuthHandler(userService services.UserService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{userService: userService, cookie: cookie}
}

// @Summary      Sign up
// @Description  Creates an unverified account and emails a verification link
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignupRequest  true  "Account data"
// @Success      201     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]interface{}
// @Failure      409     {object}  map[string]interface{}
// @Failure      500     {object}  map[string]interface{}
// @Router       /api/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Info("[auth][signup] bad request: bind json failed", "error", err)
		jsonError(c, http.StatusBadRequest, msgBadBody)
		return
	}

	user, err := h.userService.Signup(c.Request.Context(), req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			jsonError(c, http.StatusBadRequest, msg)
			return
		}
		switch {
		case errors.Is(err, services.ErrUserExists):
			jsonError(c, http.StatusConflict, "User already exists")
		case errors.Is(err, services.ErrEmailTaken):
			jsonError(c, http.StatusConflict, "Email already registered")
		default:
			internalError(c, "[auth][signup]", err, msgInternal)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"user":    user.Public(),
	})
}

// @Summary      Log in
// @Description  Checks credentials and sets the accessToken session cookie
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]interface{}
// @Failure      429    {object}  map[string]interface{}
// @Failure      500    {object}  map[string]interface{}
// @Router       /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Info("[auth][login] bad request: bind json failed", "error", err)
		jsonError(c, http.StatusBadRequest, msgBadBody)
		return
	}

	user, token, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			jsonError(c, http.StatusBadRequest, msg)
			return
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			jsonError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		internalError(c, "[auth][login]", err, msgInternal)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Login successful",
		"accessToken": token,
		"user":        user.Public(),
	})
}

// @Summary      Log out
// @Description  Clears the session cookie
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}
