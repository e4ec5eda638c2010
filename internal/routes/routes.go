package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"accountflow/internal/handlers"
	"accountflow/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	passwordHandler *handlers.PasswordHandler,
	verifyHandler *handlers.VerifyHandler,
	userHandler *handlers.UserHandler,
	limiter *middleware.RateLimiter, // may be nil
	session gin.HandlerFunc,
	health gin.HandlerFunc,
	metricsHandler http.Handler, // may be nil
) *gin.Engine {

	// ---- system
	r.GET("/healthz", health)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	throttled := []gin.HandlerFunc{}
	if limiter != nil {
		throttled = append(throttled, limiter.Middleware())
	}

	// ---- api
	api := r.Group("/api")
	{
		api.POST("/signup", authHandler.Signup)
		api.POST("/login", append(throttled, authHandler.Login)...)
		api.GET("/logout", authHandler.Logout)

		api.POST("/forgotpassword", append(throttled, passwordHandler.ForgotPassword)...)
		api.POST("/forgotpassword/:token", passwordHandler.ResetPassword)
		api.POST("/verifytoken/:token", verifyHandler.VerifyToken)

		api.GET("/user/:id", userHandler.GetUserByID)
		api.GET("/me", session, userHandler.Me)
	}

	// ---- pages
	pages := r.Group("/", middleware.RouteGuard(handlers.SessionCookie))
	{
		pages.GET("/", handlers.Page("home"))
		pages.GET("/login", handlers.Page("login"))
		pages.GET("/signup", handlers.Page("signup"))
		pages.GET("/profile", handlers.Page("profile"))
		pages.GET("/profile/:id", handlers.Page("profile"))
	}

	return r
}
