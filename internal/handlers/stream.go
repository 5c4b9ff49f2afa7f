package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // browser clients served from anywhere
	},
}

// streamPrices handles GET /ws/prices: a websocket feed of simulated
// price steps, one per second. Only wired when the sim provider is
// active.
func (h *Handler) streamPrices(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			update := h.sim.Tick()
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
	}
}
