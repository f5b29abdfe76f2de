package router

import (
	"database/sql"
	"net/http"

	"garage_backend/internal/handlers"
	"garage_backend/internal/middleware"
	"garage_backend/internal/repositories"
	"garage_backend/internal/services"
	"garage_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Setup initializes the routing for the application. taxRate is applied to
// every job card total.
func Setup(engine *gin.Engine, db *sql.DB, taxRate decimal.Decimal) {
	utils.RegisterValidators()

	// Initialize Repositories
	authRepo := repositories.NewAuthRepository()
	clientRepo := repositories.NewClientRepository()
	vehicleRepo := repositories.NewVehicleRepository()
	partRepo := repositories.NewInventoryRepository()
	catalogRepo := repositories.NewCatalogRepository()
	movementRepo := repositories.NewStockMovementRepository()
	jobCardRepo := repositories.NewJobCardRepository()
	paymentRepo := repositories.NewPaymentRepository()

	// Initialize Services
	stock := services.NewStockSynchronizer(partRepo, movementRepo)
	authService := services.NewAuthService(authRepo, db)
	clientService := services.NewClientService(clientRepo, vehicleRepo, db)
	vehicleService := services.NewVehicleService(vehicleRepo, clientRepo, db)
	inventoryService := services.NewInventoryService(partRepo, catalogRepo, movementRepo, stock, db)
	catalogService := services.NewCatalogService(catalogRepo, db)
	jobCardService := services.NewJobCardService(db, jobCardRepo, paymentRepo, clientRepo, vehicleRepo, authRepo, stock, taxRate)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	clientHandler := handlers.NewClientHandler(clientService, vehicleService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	jobCardHandler := handlers.NewJobCardHandler(jobCardService)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupUserRoutes(authenticated, authHandler)
		SetupJobCardRoutes(authenticated, jobCardHandler)
		SetupInventoryRoutes(authenticated, inventoryHandler, catalogHandler)
		SetupClientRoutes(authenticated, clientHandler)
		SetupVehicleRoutes(authenticated, vehicleHandler)
	}
}
