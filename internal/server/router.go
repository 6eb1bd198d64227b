// Package server is the HTTP shell around the ledger service: routing,
// request parsing, and bearer-token identity. All domain behavior lives in
// internal/service.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/service"
)

// NewRouter builds the gin engine with all routes and middleware installed.
func NewRouter(svc *service.TransactionService, jwtManager *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(Recovery())
	r.Use(Logger())
	r.Use(CORS())

	h := NewHandler(svc, jwtManager)

	api := r.Group("/api/v1")
	api.POST("/auth/token", h.IssueToken)

	authed := api.Group("")
	authed.Use(RequireAuth(jwtManager))
	{
		tx := authed.Group("/transactions")
		{
			tx.POST("", h.RecordTransaction)
			tx.GET("", h.ListTransactions)
			tx.GET("/:id", h.GetTransaction)
			tx.DELETE("/:id", h.DeleteTransaction)
		}

		balances := authed.Group("/balances")
		{
			balances.GET("", h.ListBalances)
			balances.GET("/me", h.MyBalance)
		}

		settlements := authed.Group("/settlements")
		{
			settlements.GET("", h.ListSettlements)
			settlements.GET("/me", h.MySettlements)
			settlements.GET("/instructions", h.Instructions)
			settlements.POST("/snapshot", h.SaveSnapshot)
			settlements.POST("/direct", h.SettleDirect)
		}

		obligations := authed.Group("/obligations")
		{
			obligations.GET("", h.ListObligations)
			obligations.GET("/unsettled", h.ListUnsettled)
			obligations.POST("/notify", h.CreateNotifyOnly)
			obligations.POST("/:id/settle", h.Settle)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", h.Notifications)
			notifications.GET("/compare", h.Compare)
		}

		history := authed.Group("/history")
		{
			history.GET("", h.History)
			history.GET("/me", h.MyHistory)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
