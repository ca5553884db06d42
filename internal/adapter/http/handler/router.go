package handler

import (
	"payrolled/internal/adapter/http/middleware"
	"payrolled/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	RosterSvc      ports.RosterService
	HistorySvc     ports.HistoryService
	Orchestrator   ports.PayrollOrchestrator
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// --- JWT-authenticated routes (operator console) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	employeeHandler := NewEmployeeHandler(deps.RosterSvc, deps.HistorySvc)
	employees := v1.Group("/employees", jwtAuth)
	{
		employees.POST("", employeeHandler.Add)
		employees.GET("", employeeHandler.List)
		employees.GET("/:id", employeeHandler.Get)
		employees.PATCH("/:id/status", employeeHandler.UpdateStatus)
		employees.GET("/:id/payments", employeeHandler.Payments)
	}

	payrollHandler := NewPayrollHandler(deps.Orchestrator)
	runs := v1.Group("/payroll/runs", jwtAuth)
	{
		runs.POST("", payrollHandler.StartRun)
		runs.POST("/:id/confirm", payrollHandler.ConfirmRun)
		runs.GET("/:id", payrollHandler.GetRun)
	}

	historyHandler := NewHistoryHandler(deps.HistorySvc)
	payments := v1.Group("/payments", jwtAuth)
	{
		payments.GET("", historyHandler.List)
	}

	return r
}
