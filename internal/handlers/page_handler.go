package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page answers a page route with a placeholder body naming the page.
func Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": name})
	}
}
