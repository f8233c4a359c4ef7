package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/papertrader/broker"
)

type orderResponse struct {
	broker.OrderResult
	Message string `json:"message"`
}

type closeRequest struct {
	Quantity *float64 `json:"quantity"`
}

type closeResponse struct {
	broker.CloseResult
	Message string `json:"message"`
}

func (s *Server) handlePlaceOrder(c *gin.Context) {
	var req broker.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := s.engine.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse{OrderResult: res, Message: "Order executed successfully"})
}

// handleClosePosition accepts an empty body, which closes the whole
// remaining quantity.
func (s *Server) handleClosePosition(c *gin.Context) {
	var body closeRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := s.engine.ClosePosition(c.Request.Context(), broker.ClosePositionRequest{
		PositionID: c.Param("id"),
		Quantity:   body.Quantity,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	msg := "Position closed successfully"
	if !res.Closed {
		msg = "Position partially closed"
	}
	c.JSON(http.StatusOK, closeResponse{CloseResult: res, Message: msg})
}
