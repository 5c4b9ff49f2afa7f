package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finsim/trading-ledger/internal/apperr"
	"github.com/finsim/trading-ledger/internal/models"
)

// buy handles POST /api/buy
func (h *Handler) buy(c *gin.Context) {
	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.E(apperr.Validation, "invalid request body"))
		return
	}

	if err := h.trades.Buy(c.Request.Context(), currentUser(c), req.Symbol, req.Shares); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "shares purchased"})
}

// sell handles POST /api/sell
func (h *Handler) sell(c *gin.Context) {
	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.E(apperr.Validation, "invalid request body"))
		return
	}

	if err := h.trades.Sell(c.Request.Context(), currentUser(c), req.Symbol, req.Shares); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "shares sold"})
}

// deposit handles POST /api/deposit
func (h *Handler) deposit(c *gin.Context) {
	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.E(apperr.Validation, "invalid request body"))
		return
	}

	if err := h.trades.Deposit(c.Request.Context(), currentUser(c), req.Amount); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deposit applied"})
}
