package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autodocs/internal/authz"
	"autodocs/internal/handlers"
	"autodocs/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	tokens middleware.TokenParser,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	verifyHandler *handlers.VerifyHandler,
	serviceHandler *handlers.ServiceHandler,
	adminHandler *handlers.AdminHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")

	// ---- public
	api.POST("/register", userHandler.Register)
	api.POST("/token", authHandler.Token)
	api.POST("/token/refresh", authHandler.Refresh)
	api.POST("/v1/email", verifyHandler.Send)
	api.GET("/v1/email/verify", verifyHandler.Verify)

	// ---- protected
	v1 := api.Group("/v1", middleware.AuthMiddleware(tokens))
	{
		v1.GET("/info", serviceHandler.Info)
		v1.GET("/services", serviceHandler.Request)

		v1.GET("/users/me", userHandler.Me)
		v1.PUT("/users/me", userHandler.UpdateMe)
		v1.DELETE("/users/me", userHandler.DeleteMe)
		v1.GET("/users/me/requests", serviceHandler.Mine)
		v1.GET("/users/request/serial-number", serviceHandler.SerialNumber)
		v1.GET("/users/request/serial-number/pdf", serviceHandler.SerialSlip)
	}

	// ADMIN
	admin := v1.Group("/admin", middleware.RequireRoles(authz.RoleAdmin))
	{
		admin.GET("/users/:student_id", adminHandler.User)
		admin.GET("/user-requests", adminHandler.UserRequests)
		admin.GET("/services-overview", reportHandler.ServicesOverview)
		admin.PUT("/service-requests/:id/status", adminHandler.ReviewServiceRequest)

		admin.GET("/departments", adminHandler.ListDepartments)
		admin.POST("/departments", adminHandler.CreateDepartment)
		admin.GET("/departments/:code", adminHandler.GetDepartment)
		admin.PUT("/departments/:code", adminHandler.UpdateDepartment)
		admin.DELETE("/departments/:code", adminHandler.DeleteDepartment)
	}

	return r
}
