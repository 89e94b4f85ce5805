package router

import (
	"go-finance-ledger/internal/handler"
	"go-finance-ledger/internal/middleware"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouteConfig struct {
	App               *gin.Engine
	AuthHandler       handler.AuthHandler
	WalletHandler     handler.WalletHandler
	ExpenseHandler    handler.ExpenseHandler
	GoalHandler       handler.GoalHandler
	GroupHandler      handler.GroupHandler
	AuthMiddleware    *middleware.AuthMiddleware
	LoggerMiddleware  gin.HandlerFunc
	MetricsMiddleware gin.HandlerFunc
}

func (c *RouteConfig) SetupRoute() {
	c.App.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "finance-ledger-api",
		})
	})
	c.App.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if c.MetricsMiddleware != nil {
		c.App.Use(c.MetricsMiddleware)
	}
	if c.LoggerMiddleware != nil {
		c.App.Use(c.LoggerMiddleware)
	}

	v1 := c.App.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", c.AuthHandler.Register)
			auth.POST("/login", c.AuthHandler.Login)
		}

		protected := v1.Group("")
		protected.Use(c.AuthMiddleware.JWTAuth())

		wallet := protected.Group("/wallet")
		{
			wallet.GET("", c.WalletHandler.GetWallet)
			wallet.POST("/recompute", c.WalletHandler.Recompute)
			wallet.GET("/transactions", c.WalletHandler.GetTransactionHistory)
			wallet.POST("/transactions", c.WalletHandler.AddTransaction)
			wallet.PUT("/transactions/:id", c.WalletHandler.UpdateTransaction)
			wallet.DELETE("/transactions/:id", c.WalletHandler.DeleteTransaction)
			wallet.POST("/allocations", c.WalletHandler.AllocateToGoal)
			wallet.PUT("/allocations/:id", c.WalletHandler.UpdateAllocation)
		}

		expenses := protected.Group("/expenses")
		{
			expenses.GET("", c.ExpenseHandler.ListExpenses)
			expenses.POST("", c.ExpenseHandler.CreateExpense)
			expenses.GET("/statistics", c.ExpenseHandler.GetStatistics)
			expenses.GET("/:id", c.ExpenseHandler.GetExpense)
			expenses.PUT("/:id", c.ExpenseHandler.UpdateExpense)
			expenses.DELETE("/:id", c.ExpenseHandler.DeleteExpense)
		}
		protected.GET("/categories", c.ExpenseHandler.ListCategories)

		goals := protected.Group("/goals")
		{
			goals.GET("", c.GoalHandler.ListGoals)
			goals.POST("", c.GoalHandler.CreateGoal)
			goals.GET("/:id", c.GoalHandler.GetGoal)
			goals.PUT("/:id", c.GoalHandler.UpdateGoal)
			goals.DELETE("/:id", c.GoalHandler.DeleteGoal)
			goals.POST("/:id/contributions", c.GoalHandler.AddContribution)
			goals.POST("/:id/release", c.GoalHandler.ReleaseFunds)
		}

		groups := protected.Group("/groups")
		{
			groups.POST("", c.GroupHandler.CreateGroup)
			groups.POST("/join", c.GroupHandler.JoinGroup)
			groups.GET("/:id", c.GroupHandler.GetGroup)
			groups.POST("/:id/invite", c.GroupHandler.InviteMember)
			groups.DELETE("/:id/members/:member_id", c.GroupHandler.RemoveMember)
			groups.POST("/:id/goals", c.GroupHandler.CreateGroupGoal)
			groups.POST("/:id/contributions", c.GroupHandler.Contribute)
		}
	}
}
