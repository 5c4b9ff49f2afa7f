package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finsim/trading-ledger/internal/apperr"
)

const (
	sessionCookie = "session_token"
	userIDKey     = "userID"
)

// sessionToken pulls the token from the cookie or a Bearer header.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// requireSession resolves the session and stashes the user id in the gin
// context for the handlers downstream.
func (h *Handler) requireSession(c *gin.Context) {
	userID, ok, err := h.sessions.Resolve(c.Request.Context(), sessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		writeError(c, apperr.E(apperr.Authentication, "must be logged in"))
		return
	}
	c.Set(userIDKey, userID)
	c.Next()
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// setSessionCookie binds the token to the browser. MaxAge 0 makes it a
// session cookie, matching the non-persistent session policy.
func setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}
