package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/papertrader/market"
)

type assetTypeInfo struct {
	AssetType     market.AssetClass  `json:"asset_type"`
	Leverage      int                `json:"leverage"`
	ContractSizes map[string]float64 `json:"contract_sizes"`
	Symbols       []string           `json:"symbols"`
}

// symbolsParam splits a comma-separated symbols query, defaulting to every
// registered symbol.
func (s *Server) symbolsParam(c *gin.Context) []string {
	raw := strings.TrimSpace(c.Query("symbols"))
	if raw == "" {
		return s.engine.Registry().AllSymbols()
	}
	var out []string
	for _, sym := range strings.Split(raw, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			out = append(out, strings.ToUpper(sym))
		}
	}
	return out
}

func (s *Server) handlePrices(c *gin.Context) {
	prices, err := market.Snapshot(c.Request.Context(), s.engine, s.symbolsParam(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"prices":    prices,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleSymbols(c *gin.Context) {
	reg := s.engine.Registry()
	raw := c.Query("asset_type")
	if raw == "" {
		grouped := make(map[market.AssetClass][]string, len(market.AllAssetClasses))
		for _, ac := range market.AllAssetClasses {
			grouped[ac] = reg.Symbols(ac)
		}
		c.JSON(http.StatusOK, gin.H{"symbols": grouped})
		return
	}

	ac, err := market.ParseAssetClass(raw)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset_type": ac,
		"symbols":    reg.Symbols(ac),
	})
}

func (s *Server) handleAssetTypes(c *gin.Context) {
	reg := s.engine.Registry()
	out := make([]assetTypeInfo, 0, len(market.AllAssetClasses))
	for _, ac := range market.AllAssetClasses {
		out = append(out, assetTypeInfo{
			AssetType:     ac,
			Leverage:      market.DefaultLeverage(ac),
			ContractSizes: reg.ContractSizes(ac),
			Symbols:       reg.Symbols(ac),
		})
	}
	c.JSON(http.StatusOK, gin.H{"asset_types": out})
}
