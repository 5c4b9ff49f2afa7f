package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finsim/trading-ledger/internal/quote"
)

// quote handles GET /api/quote?symbol=AAPL
func (h *Handler) quote(c *gin.Context) {
	q, err := h.ledger.Quote(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":        q.Symbol,
		"name":          q.Name,
		"price":         q.Price,
		"price_display": quote.FormatUSD(q.Price),
	})
}

// portfolio handles GET /api/portfolio
func (h *Handler) portfolio(c *gin.Context) {
	resp, err := h.ledger.Portfolio(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// history handles GET /api/history
func (h *Handler) history(c *gin.Context) {
	rows, err := h.ledger.History(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": rows,
		"count":   len(rows),
	})
}
