// Package server assembles the Gin engine for the Orbit API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"orbit/internal/handlers"
	"orbit/internal/middleware"
	"orbit/internal/services"

	_ "orbit/internal/docs" // Import swagger docs
)

// Services are the business dependencies the routes call into.
type Services struct {
	Users   services.UserServicer
	Ledgers services.LedgerServicer
	Budgets services.BudgetServicer
	Advisor services.AdvisorServicer
}

// Options configure the engine.
type Options struct {
	Tokens     *middleware.TokenManager
	CORSOrigin string
	EnableDocs bool
}

// NewRouter builds the engine with middleware, health, docs and every /api route.
func NewRouter(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, opts.Tokens)
	dataHandler := handlers.NewDataHandler(svc.Users, svc.Ledgers)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets)
	advisorHandler := handlers.NewAdvisorHandler(svc.Advisor)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(opts.CORSOrigin))

	if opts.EnableDocs {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgotpassword", authHandler.ForgotPassword)
	auth.PUT("/resetpassword/:resetToken", authHandler.ResetPassword)
	auth.GET("/count", authHandler.Count)

	// Protected routes
	requireAuth := middleware.AuthMiddleware(opts.Tokens)
	auth.GET("/me", requireAuth, authHandler.Me)

	data := api.Group("/data", requireAuth)
	data.GET("/me", dataHandler.Me)
	data.POST("/sync", dataHandler.Sync)
	data.GET("/summary", dataHandler.Summary)

	budgets := api.Group("/budgets", requireAuth)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.POST("", budgetHandler.SetLimit)
	budgets.GET("/status", budgetHandler.GetStatus)
	budgets.DELETE("/:category", budgetHandler.RemoveLimit)

	advisor := api.Group("/advisor", requireAuth)
	advisor.POST("/checkup", advisorHandler.Checkup)
	advisor.POST("/message", advisorHandler.Message)

	return router
}
