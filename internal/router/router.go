package router

import (
	"github.com/gin-gonic/gin"
	"github.com/hyeonlab/accounts-backend/config"
	"github.com/hyeonlab/accounts-backend/internal/app/controller"
	"github.com/hyeonlab/accounts-backend/internal/middleware"
)

type Router struct {
	authController *controller.AuthController
	userController *controller.UserController
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController: authController,
		userController: userController,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"success": true,
			"message": r.config.App.Name + " API is running",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/register", r.authController.Register)
		v1.POST("/login", r.authController.Login)
		v1.GET("/email/verify/:hash", r.authController.VerifyEmail)
		v1.POST("/password/email", r.authController.ForgotPassword)
		v1.POST("/password/reset", r.authController.ResetPassword)

		authed := v1.Group("", r.authMiddleware.Authenticate())
		{
			authed.POST("/email/resend", r.authController.ResendVerification)
			authed.GET("/me", r.authController.GetMe)
			authed.POST("/change-password", r.authController.ChangePassword)
			authed.POST("/logout", r.authController.Logout)

			users := authed.Group("/users", r.authMiddleware.RequireVerified())
			{
				users.GET("", r.userController.List)
				users.POST("", r.userController.Create)
				users.GET("/:id", r.userController.Get)
				users.PUT("/:id", r.userController.Update)
				users.DELETE("/:id", r.userController.Delete)
			}
		}
	}

	return router
}
