package http

import (
	"net/http"
	"strconv"
	"strings"

	"insider-tracker/internal/entity"
	"insider-tracker/internal/tracker/config"
	"insider-tracker/internal/tracker/service"
	"insider-tracker/pkg/logger"
	"insider-tracker/pkg/utils"

	"github.com/labstack/echo/v4"
)

// TradesHandler handles HTTP requests for collected insider trades.
type TradesHandler struct {
	cfg       *config.Config
	collector service.CollectorService
	logger    *logger.Logger
}

// NewTradesHandler creates a new TradesHandler.
func NewTradesHandler(cfg *config.Config, collector service.CollectorService, logger *logger.Logger) *TradesHandler {
	return &TradesHandler{cfg: cfg, collector: collector, logger: logger}
}

// RegisterRoutes registers the trade routes to the Echo group.
func (h *TradesHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/trades", h.GetTrades)
	g.GET("/filings/:ticker", h.GetRecentFilings)
}

// tradesResponse carries the records plus the dashboard summary metrics.
type tradesResponse struct {
	Mode        string                `json:"mode"`
	Count       int                   `json:"count"`
	BuyValue    float64               `json:"buy_value"`
	SellValue   float64               `json:"sell_value"`
	BuyDisplay  string                `json:"buy_display"`
	SellDisplay string                `json:"sell_display"`
	Trades      []entity.InsiderTrade `json:"trades"`
}

// GetTrades runs a collection and returns the records. Query parameters:
// mode (watchlist|daterange), tickers (comma-separated), start, end
// (YYYY-MM-DD), max.
func (h *TradesHandler) GetTrades(c echo.Context) error {
	ctx := c.Request().Context()

	mode := c.QueryParam("mode")
	if mode == "" {
		mode = h.cfg.Collector.Mode
	}

	var trades []entity.InsiderTrade
	var err error

	switch mode {
	case "watchlist":
		tickers := h.cfg.Collector.Watchlist
		if raw := c.QueryParam("tickers"); raw != "" {
			tickers = splitTickers(raw)
		}
		max := h.cfg.Collector.MaxFilingsPerTicker
		if n, convErr := strconv.Atoi(c.QueryParam("max")); convErr == nil && n > 0 {
			max = n
		}
		trades, err = h.collector.CollectWatchlist(ctx, tickers, max, nil)

	case "daterange":
		start, end := c.QueryParam("start"), c.QueryParam("end")
		if utils.ValidateDate(start) != nil || utils.ValidateDate(end) != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start and end must be YYYY-MM-DD dates"})
		}
		max := h.cfg.Collector.MaxSearchFilings
		if n, convErr := strconv.Atoi(c.QueryParam("max")); convErr == nil && n > 0 {
			max = n
		}
		trades, err = h.collector.CollectByDateRange(ctx, start, end, max, nil)

	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "mode must be watchlist or daterange"})
	}

	if err != nil {
		h.logger.Error("Collection failed", logger.ErrorField(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "collection failed"})
	}

	resp := tradesResponse{Mode: mode, Count: len(trades), Trades: trades}
	if resp.Trades == nil {
		resp.Trades = []entity.InsiderTrade{}
	}
	resp.BuyValue, resp.SellValue = entity.BuySellTotals(trades)
	resp.BuyDisplay = utils.FormatMoney(resp.BuyValue)
	resp.SellDisplay = utils.FormatMoney(resp.SellValue)

	return c.JSON(http.StatusOK, resp)
}

// GetRecentFilings lists a ticker's latest Form 4 filing references.
func (h *TradesHandler) GetRecentFilings(c echo.Context) error {
	ticker := c.Param("ticker")

	max := 10
	if n, err := strconv.Atoi(c.QueryParam("max")); err == nil && n > 0 {
		max = n
	}

	filings, err := h.collector.RecentFilings(c.Request().Context(), ticker, max)
	if err != nil {
		h.logger.Error("Recent filings lookup failed",
			logger.StringField("ticker", ticker),
			logger.ErrorField(err),
		)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	if filings == nil {
		filings = []entity.Filing{}
	}
	return c.JSON(http.StatusOK, filings)
}

func splitTickers(raw string) []string {
	parts := strings.Split(raw, ",")
	tickers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tickers = append(tickers, strings.ToUpper(p))
		}
	}
	return tickers
}
