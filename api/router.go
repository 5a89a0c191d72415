package api

import (
	"net/http"

	"api_tractors/internal/insights"
	"api_tractors/internal/inventory"
	"api_tractors/internal/invoice"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer needs. Ledger and Assistant are
// required; a nil Invoices disables the invoice endpoint.
type Deps struct {
	Ledger     *inventory.Service
	Assistant  *insights.Assistant
	Invoices   *invoice.Renderer
	Dealership invoice.Dealership
	Logger     *zap.Logger
}

// InitRoutes registers the middleware and every endpoint on the given Gin
// engine.
func InitRoutes(e *gin.Engine, d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	h := newHandler(d)

	e.Use(RequestID(), RequestLogger(d.Logger))

	e.GET("/tractors", h.handleListTractors)
	e.POST("/tractors", h.handleCreateTractor)
	e.GET("/tractors/:id", h.handleGetTractor)
	e.PUT("/tractors/:id", h.handleUpdateTractor)
	e.POST("/tractors/:id/sell", h.handleSellTractor)

	e.GET("/transactions", h.handleListTransactions)
	e.GET("/transactions/:id", h.handleGetTransaction)
	e.GET("/transactions/:id/invoice", h.handleInvoice)

	e.GET("/dashboard", h.handleDashboard)
	e.GET("/analytics/monthly", h.handleMonthly)
	e.GET("/analytics/year", h.handleYearStats)

	e.POST("/assistant/description", h.handleDescribe)
	e.POST("/assistant/summary", h.handleSummary)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
