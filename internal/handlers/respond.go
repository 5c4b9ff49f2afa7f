package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finsim/trading-ledger/internal/apperr"
)

// errorBody is the structured error surface: a machine-readable kind plus
// a human-readable message.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError maps error kinds to statuses: every domain/validation kind is
// a 403-class client error, anything unexpected is a 500 with a generic
// message.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusForbidden
	if kind == apperr.Internal {
		status = http.StatusInternalServerError
		log.WithError(err).Error("internal error")
	}

	c.AbortWithStatusJSON(status, errorBody{
		Kind:    string(kind),
		Message: apperr.Message(err),
	})
}
