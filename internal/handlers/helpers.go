package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"accountflow/internal/middleware"
	"accountflow/internal/services"
)

const (
	msgInternal      = "Internal Server Error"
	msgInternalLower = "Internal server error"
	msgBadBody       = "Invalid request body"
)

func jsonError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// validationMessage reports whether err is a client-correctable input error.
func validationMessage(err error) (string, bool) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}

func internalError(c *gin.Context, area string, err error, message string) {
	slog.ErrorContext(c.Request.Context(), area+" unexpected failure", "error", err, "path", c.FullPath())
	jsonError(c, http.StatusInternalServerError, message)
}

// sessionUserID reads the id placed in the context by middleware.SessionAuth.
func sessionUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	switch t := v.(type) {
	case uuid.UUID:
		return t, true
	case string:
		if id, err := uuid.Parse(t); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}
