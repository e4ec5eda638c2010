package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// authPages are only reachable without a session; a logged-in visitor is sent home.
var authPages = map[string]bool{
	"/login":   true,
	"/signup":  true,
	"/profile": true,
}

// RouteGuard redirects page requests based on whether the session cookie is
// present. The cookie is not validated here.
func RouteGuard(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		token, err := c.Cookie(cookieName)
		hasSession := err == nil && token != ""

		switch {
		case hasSession && authPages[path]:
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		case !hasSession && !authPages[path]:
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
