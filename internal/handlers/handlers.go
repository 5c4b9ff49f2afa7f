// Package handlers translates HTTP requests into ledger and auth
// operations. All domain decisions live below; handlers bind input, pick
// the authenticated user out of the request, and map errors to statuses.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/finsim/trading-ledger/internal/auth"
	"github.com/finsim/trading-ledger/internal/ledger"
	"github.com/finsim/trading-ledger/internal/quote"
	"github.com/finsim/trading-ledger/internal/session"
)

var log = logrus.WithField("component", "http")

type Handler struct {
	auth     *auth.Service
	ledger   *ledger.Service
	trades   *ledger.Processor
	sessions *session.Store
	sim      *quote.SimProvider // nil when an external provider is configured
}

func New(a *auth.Service, l *ledger.Service, trades *ledger.Processor, sessions *session.Store, sim *quote.SimProvider) *Handler {
	return &Handler{
		auth:     a,
		ledger:   l,
		trades:   trades,
		sessions: sessions,
		sim:      sim,
	}
}

// Router wires every route. Mutating financial routes sit behind the
// session middleware; register/login/logout manage the session itself.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.GET("/logout", h.logout)

		authed := api.Group("", h.requireSession)
		{
			authed.GET("/portfolio", h.portfolio)
			authed.GET("/history", h.history)
			authed.GET("/quote", h.quote)
			authed.POST("/buy", h.buy)
			authed.POST("/sell", h.sell)
			authed.POST("/deposit", h.deposit)
		}
	}

	if h.sim != nil {
		r.GET("/ws/prices", h.streamPrices)
	}

	return r
}
