package router

import (
	"garage_backend/internal/handlers"
	"garage_backend/internal/middleware"
	"garage_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Role sets used across route groups.
var (
	adminOnly   = middleware.RoleAuthMiddleware(models.RoleAdmin)
	frontOffice = middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff)
)

// SetupPublicAuthRoutes registers the routes that issue tokens.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.LoginUser)
	group.POST("/refresh-token", authHandler.RefreshToken)
}

// SetupAuthenticatedAuthRoutes registers auth routes that need a token.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.LogoutUser)
	group.GET("/me", authHandler.GetCurrentUser)
}

// SetupUserRoutes sets up user management routes.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(adminOnly)
	{
		userRoutes.POST("", authHandler.CreateUser)
		userRoutes.GET("", authHandler.GetUsers)
		userRoutes.GET("/:id", authHandler.GetUserByID)
		userRoutes.PUT("/:id", authHandler.UpdateUser)
	}
}

// SetupJobCardRoutes sets up the job card routes. Technicians work on job
// cards too, so only deletion is restricted.
func SetupJobCardRoutes(authenticatedGroup *gin.RouterGroup, jobCardHandler *handlers.JobCardHandler) {
	jobCardRoutes := authenticatedGroup.Group("/job-cards")
	{
		jobCardRoutes.POST("", jobCardHandler.CreateJobCard)
		jobCardRoutes.GET("", jobCardHandler.GetJobCards)
		jobCardRoutes.GET("/:id", jobCardHandler.GetJobCardByID)
		jobCardRoutes.PUT("/:id", jobCardHandler.UpdateJobCard)
		jobCardRoutes.PATCH("/:id/status", jobCardHandler.UpdateJobCardStatus)
		jobCardRoutes.POST("/:id/recalculate", jobCardHandler.RecalculateTotals)
		jobCardRoutes.DELETE("/:id", frontOffice, jobCardHandler.DeleteJobCard)

		jobCardRoutes.POST("/:id/line-items", jobCardHandler.AddLineItem)
		jobCardRoutes.PUT("/:id/line-items", jobCardHandler.ReplaceLineItems)
		jobCardRoutes.PUT("/:id/line-items/:itemId", jobCardHandler.UpdateLineItem)
		jobCardRoutes.DELETE("/:id/line-items/:itemId", jobCardHandler.RemoveLineItem)

		jobCardRoutes.POST("/:id/payments", frontOffice, jobCardHandler.RecordPayment)
		jobCardRoutes.GET("/:id/payments", jobCardHandler.GetPayments)
	}
}

// SetupInventoryRoutes sets up parts, stock movements, categories and vendors.
func SetupInventoryRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler, catalogHandler *handlers.CatalogHandler) {
	inventoryRoutes := authenticatedGroup.Group("/inventory")
	{
		inventoryRoutes.GET("/parts", inventoryHandler.GetParts)
		inventoryRoutes.GET("/parts/:id", inventoryHandler.GetPartByID)
		inventoryRoutes.POST("/parts", frontOffice, inventoryHandler.CreatePart)
		inventoryRoutes.PUT("/parts/:id", frontOffice, inventoryHandler.UpdatePart)
		inventoryRoutes.DELETE("/parts/:id", frontOffice, inventoryHandler.DeletePart)
		inventoryRoutes.POST("/parts/:id/adjust", frontOffice, inventoryHandler.AdjustStock)

		inventoryRoutes.GET("/movements", inventoryHandler.GetMovements)

		inventoryRoutes.GET("/categories", catalogHandler.GetCategories)
		inventoryRoutes.GET("/categories/:id", catalogHandler.GetCategoryByID)
		inventoryRoutes.POST("/categories", frontOffice, catalogHandler.CreateCategory)
		inventoryRoutes.PUT("/categories/:id", frontOffice, catalogHandler.UpdateCategory)
		inventoryRoutes.DELETE("/categories/:id", frontOffice, catalogHandler.DeleteCategory)

		inventoryRoutes.GET("/vendors", catalogHandler.GetVendors)
		inventoryRoutes.GET("/vendors/:id", catalogHandler.GetVendorByID)
		inventoryRoutes.POST("/vendors", frontOffice, catalogHandler.CreateVendor)
		inventoryRoutes.PUT("/vendors/:id", frontOffice, catalogHandler.UpdateVendor)
		inventoryRoutes.DELETE("/vendors/:id", frontOffice, catalogHandler.DeleteVendor)
	}
}

// SetupClientRoutes sets up the client routes.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	{
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.GET("/:id/vehicles", clientHandler.GetClientVehicles)
		clientRoutes.POST("", frontOffice, clientHandler.CreateClient)
		clientRoutes.PUT("/:id", frontOffice, clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", frontOffice, clientHandler.DeleteClient)
	}
}

// SetupVehicleRoutes sets up the vehicle routes.
func SetupVehicleRoutes(authenticatedGroup *gin.RouterGroup, vehicleHandler *handlers.VehicleHandler) {
	vehicleRoutes := authenticatedGroup.Group("/vehicles")
	{
		vehicleRoutes.GET("", vehicleHandler.GetVehicles)
		vehicleRoutes.GET("/:id", vehicleHandler.GetVehicleByID)
		vehicleRoutes.POST("", frontOffice, vehicleHandler.CreateVehicle)
		vehicleRoutes.PUT("/:id", frontOffice, vehicleHandler.UpdateVehicle)
		vehicleRoutes.DELETE("/:id", frontOffice, vehicleHandler.DeleteVehicle)
	}
}
