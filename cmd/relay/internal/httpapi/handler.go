// Package httpapi exposes the quote façade and the synthesized portfolio
// payloads over JSON.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/portfolio"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/quotes"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

type Handler struct {
	quotes    *quotes.Service
	portfolio *portfolio.Synthesizer
	logger    *zap.Logger
}

func NewHandler(q *quotes.Service, p *portfolio.Synthesizer, logger *zap.Logger) *Handler {
	return &Handler{quotes: q, portfolio: p, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/quote/:symbol", h.GetQuote)
	r.GET("/quotes/top", h.GetTopQuotes)
	r.GET("/options/:symbol", h.GetOptionQuote)
	r.GET("/search", h.Search)

	market := r.Group("/market")
	{
		market.GET("/stock/:symbol", h.GetStockDetail)
		market.GET("/stocks/top", h.GetTopQuotes)
		market.GET("/options/:symbol", h.GetOptionQuote)
		market.GET("/data", h.GetMarketData)
	}

	r.GET("/portfolio/summary", h.GetPortfolioSummary)
	r.GET("/portfolio/chart", h.GetPortfolioChart)
	r.GET("/positions", h.GetPositions)
	r.POST("/connect-brokerage", h.ConnectBrokerage)
}

// symbolParam validates :symbol and writes the 400 itself on failure.
func symbolParam(c *gin.Context) (string, bool) {
	sym, ok := quotes.ValidSymbol(c.Param("symbol"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol"})
		return "", false
	}
	return sym, true
}

func (h *Handler) GetQuote(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.quotes.Resolve(sym))
}

func (h *Handler) GetTopQuotes(c *gin.Context) {
	c.JSON(http.StatusOK, h.quotes.Top())
}

func (h *Handler) GetMarketData(c *gin.Context) {
	c.JSON(http.StatusOK, h.quotes.MarketData())
}

func (h *Handler) GetOptionQuote(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	underlying := h.quotes.Resolve(sym).Price
	c.JSON(http.StatusOK, h.portfolio.OptionQuote(sym, underlying))
}

func (h *Handler) Search(c *gin.Context) {
	matches := h.quotes.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"count": len(matches), "result": matches})
}

func (h *Handler) GetStockDetail(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.quotes.Detail(c.Request.Context(), sym))
}

func (h *Handler) GetPortfolioSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.portfolio.Summary())
}

func (h *Handler) GetPositions(c *gin.Context) {
	c.JSON(http.StatusOK, h.portfolio.Positions())
}

func (h *Handler) GetPortfolioChart(c *gin.Context) {
	c.JSON(http.StatusOK, h.portfolio.Chart())
}

// ConnectBrokerage accepts credentials and acknowledges them. Nothing is
// stored or forwarded, and the credentials are never logged.
func (h *Handler) ConnectBrokerage(c *gin.Context) {
	var creds models.BrokerageCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, models.BrokerageResult{
			Success: false,
			Message: "apiKey and apiSecret are required",
		})
		return
	}
	h.logger.Info("Brokerage connection requested")
	c.JSON(http.StatusOK, models.BrokerageResult{
		Success: true,
		Message: "Brokerage account connected",
	})
}
