package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finsim/trading-ledger/internal/apperr"
	"github.com/finsim/trading-ledger/internal/models"
)

// register handles POST /api/register
func (h *Handler) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.E(apperr.Validation, "invalid request body"))
		return
	}

	userID, token, err := h.auth.Register(c.Request.Context(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		writeError(c, err)
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"token":   token,
	})
}

// login handles POST /api/login
func (h *Handler) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.E(apperr.Validation, "invalid request body"))
		return
	}

	userID, token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, sessionToken(c))
	if err != nil {
		clearSessionCookie(c)
		writeError(c, err)
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"token":   token,
	})
}

// logout handles GET /api/logout. Always succeeds, session or not.
func (h *Handler) logout(c *gin.Context) {
	h.auth.Logout(c.Request.Context(), sessionToken(c))
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
