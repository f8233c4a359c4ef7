package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rustyeddy/papertrader/sim"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps an engine error kind to its HTTP status.
func statusFor(kind sim.Kind) int {
	switch {
	case kind == sim.KindInternal:
		return http.StatusInternalServerError
	case kind.NotFound():
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	kind := sim.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	c.JSON(status, errorResponse{Error: string(kind), Message: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: string(sim.KindInvalidRequest), Message: msg})
}
