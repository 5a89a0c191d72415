package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"api_tractors/internal/analytics"
	"api_tractors/internal/insights"
	"api_tractors/internal/inventory"
	"api_tractors/internal/invoice"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// handler implements the HTTP endpoints over the ledger, the views and the
// assistant.
type handler struct {
	ledger     *inventory.Service
	assistant  *insights.Assistant
	invoices   *invoice.Renderer
	dealership invoice.Dealership
	logger     *zap.Logger
}

func newHandler(d Deps) *handler {
	return &handler{
		ledger:     d.Ledger,
		assistant:  d.Assistant,
		invoices:   d.Invoices,
		dealership: d.Dealership,
		logger:     d.Logger,
	}
}

// respondError maps ledger errors to status codes.
func (h *handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("unexpected ledger error", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *handler) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Warn(msg, zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *handler) handleListTractors(c *gin.Context) {
	tractors := h.ledger.Tractors()

	status := inventory.TractorStatus(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusOK, tractors)
		return
	}
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
		return
	}

	available, sold := analytics.Partition(tractors)
	if status == inventory.StatusAvailable {
		c.JSON(http.StatusOK, available)
		return
	}
	c.JSON(http.StatusOK, sold)
}

func (h *handler) handleCreateTractor(c *gin.Context) {
	var draft inventory.TractorDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.badRequest(c, "invalid request payload", err)
		return
	}
	if err := draft.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	t, err := h.ledger.AddTractor(draft)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *handler) handleGetTractor(c *gin.Context) {
	t, err := h.ledger.Tractor(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type updateTractorRequest struct {
	inventory.TractorDraft
	Status inventory.TractorStatus `json:"status"`
}

func (h *handler) handleUpdateTractor(c *gin.Context) {
	id := c.Param("id")

	var req updateTractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request payload", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.ledger.UpdateTractor(req.Apply(inventory.Tractor{ID: id, Status: req.Status})); err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.ledger.Tractor(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type sellRequest struct {
	Customer  inventory.CustomerDraft `json:"customer"`
	SalePrice decimal.Decimal         `json:"salePrice"`
	Date      string                  `json:"date"`
}

func (h *handler) handleSellTractor(c *gin.Context) {
	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request payload", err)
		return
	}
	if req.SalePrice.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sale price must not be negative"})
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := time.Parse(inventory.DateLayout, req.Date)
		if err != nil {
			h.badRequest(c, "date must be YYYY-MM-DD", err)
			return
		}
		date = d
	}

	t, err := h.ledger.Tractor(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	tx, err := h.ledger.RecordSaleOn(t, req.Customer, req.SalePrice, date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *handler) handleListTransactions(c *gin.Context) {
	txs := h.ledger.Transactions()

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		txs = analytics.Recent(txs, n)
	}
	c.JSON(http.StatusOK, txs)
}

func (h *handler) handleGetTransaction(c *gin.Context) {
	tx, err := h.ledger.Transaction(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *handler) handleInvoice(c *gin.Context) {
	if h.invoices == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "invoices are not configured"})
		return
	}

	tx, err := h.ledger.Transaction(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.invoices.Render(&buf, invoice.Build(tx, h.dealership)); err != nil {
		h.logger.Error("failed to render invoice", zap.String("transaction_id", tx.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render invoice"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handler) handleDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, analytics.Dashboard(h.ledger.Snapshot(), h.ledger.Now(), analytics.DefaultRecent))
}

func (h *handler) handleMonthly(c *gin.Context) {
	series := analytics.MonthlySeries(h.ledger.Transactions())
	c.JSON(http.StatusOK, series[:])
}

func (h *handler) handleYearStats(c *gin.Context) {
	txs, ok := h.transactionsForYear(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.YearStats(txs))
}

type describeRequest struct {
	Name  string `json:"name" binding:"required"`
	Model string `json:"model" binding:"required"`
	Year  int    `json:"year" binding:"required"`
}

func (h *handler) handleDescribe(c *gin.Context) {
	var req describeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "name, model and year are required", err)
		return
	}

	text := h.assistant.DescribeTractor(c.Request.Context(), insights.TractorDetails(req.Name, req.Model, req.Year))
	c.JSON(http.StatusOK, gin.H{"description": text})
}

func (h *handler) handleSummary(c *gin.Context) {
	txs, ok := h.transactionsForYear(c)
	if !ok {
		return
	}
	text := h.assistant.SummarizeYear(c.Request.Context(), txs)
	c.JSON(http.StatusOK, gin.H{"summary": text})
}

// transactionsForYear returns the ledger's transactions, narrowed to the
// optional ?year= query parameter.
func (h *handler) transactionsForYear(c *gin.Context) ([]inventory.Transaction, bool) {
	txs := h.ledger.Transactions()

	raw := c.Query("year")
	if raw == "" {
		return txs, true
	}
	if _, err := strconv.Atoi(raw); err != nil || len(raw) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a four digit number"})
		return nil, false
	}

	out := make([]inventory.Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.HasPrefix(tx.Date, raw+"-") {
			out = append(out, tx)
		}
	}
	return out, true
}
