package main

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func newRouter(s *server, logger *logrus.Logger, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), cors.New(corsConfig(allowedOrigins)))

	r.GET("/health", s.healthCheck)

	api := r.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/dashboard", s.getDashboard)
		api.GET("/analytics", s.getAnalytics)

		api.GET("/transactions", s.getTransactions)
		api.POST("/transactions", s.addTransaction)
		api.DELETE("/transactions/:id", s.deleteTransaction)

		api.GET("/budget", s.getBudgetOverview)
		api.POST("/budget/category", s.createBudgetCategory)
		api.PUT("/budget/category/:id", s.updateBudgetCategory)
		api.DELETE("/budget/category/:id", s.deleteBudgetCategory)

		api.GET("/goals", s.getGoals)
		api.POST("/goals", s.createGoal)
		api.PUT("/goals/:id", s.updateGoal)
		api.DELETE("/goals/:id", s.deleteGoal)
	}

	return r
}

// corsConfig allows credentials only for an explicit origin list. A "*"
// entry opens the API to every origin without credentials.
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}
