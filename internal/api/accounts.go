package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/sim"
)

func (s *Server) handleCreateAccount(c *gin.Context) {
	var req broker.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	acct, err := s.engine.CreateAccount(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"account_id": acct.ID,
		"message":    "Paper trading account created successfully",
		"account":    acct,
	})
}

// handleGetAccount revalues the account before returning it.
func (s *Server) handleGetAccount(c *gin.Context) {
	id := c.Param("id")
	includePositions, ok := boolQuery(c, "include_positions", true)
	if !ok {
		return
	}
	includeHistory, ok := boolQuery(c, "include_history", false)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	acct, err := s.engine.RefreshAccount(ctx, id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := gin.H{"account": acct}
	if includePositions {
		positions, err := s.engine.Positions(id, false)
		if err != nil {
			s.writeError(c, err)
			return
		}
		if positions == nil {
			positions = []sim.Position{}
		}
		resp["positions"] = positions
	}
	if includeHistory {
		trades, err := s.engine.History(ctx, id, s.opts.HistoryLimit)
		if err != nil {
			s.writeError(c, err)
			return
		}
		resp["recent_trades"] = nonNilTrades(trades)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCloseAccount(c *gin.Context) {
	acct, err := s.engine.CloseAccount(c.Request.Context(), c.Param("id"), "")
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account": acct,
		"message": "Account closed",
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	trades, err := s.engine.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": nonNilTrades(trades)})
}

// boolQuery reads an optional boolean query parameter. It writes a 400 and
// returns ok=false when the value does not parse.
func boolQuery(c *gin.Context, key string, def bool) (v, ok bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, key+" must be a boolean")
		return false, false
	}
	return b, true
}

func nonNilTrades(t []journal.TradeRecord) []journal.TradeRecord {
	if t == nil {
		return []journal.TradeRecord{}
	}
	return t
}
