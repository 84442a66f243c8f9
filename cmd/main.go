package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"insider-tracker/internal/entity"
	"insider-tracker/internal/tracker/config"
	delivery "insider-tracker/internal/tracker/delivery/http"
	"insider-tracker/internal/tracker/exporter"
	"insider-tracker/internal/tracker/repository"
	"insider-tracker/internal/tracker/service"
	"insider-tracker/pkg/logger"
	"insider-tracker/pkg/telegram"
	"insider-tracker/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var (
	configPath string

	collectMode    string
	collectTickers []string
	collectStart   string
	collectEnd     string
	collectDate    string
	collectMax     int
)

var rootCmd = &cobra.Command{
	Use:   "insider-tracker",
	Short: "Collects SEC Form 4 insider trading disclosures",
	Long:  `insider-tracker discovers, downloads and parses SEC EDGAR Form 4 filings into normalized transaction records and spreadsheet reports.`,
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Runs one collection and writes the spreadsheet",
	Run:   runCollect,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the trade API and the optional collection scheduler",
	Run:   runServe,
}

func runCollect(cmd *cobra.Command, args []string) {
	cfg, appLogger, collector := buildTracker()
	defer func() { _ = appLogger.Sync() }()

	dateStr := collectDate
	if dateStr == "" {
		dateStr = utils.Today()
	} else if err := utils.ValidateDate(dateStr); err != nil {
		appLogger.Fatal("Invalid --date, expected YYYY-MM-DD", logger.StringField("date", collectDate))
	}

	mode := collectMode
	if mode == "" {
		mode = cfg.Collector.Mode
	}

	tickers := cfg.Collector.Watchlist
	if len(collectTickers) > 0 {
		tickers = make([]string, len(collectTickers))
		for i, t := range collectTickers {
			tickers[i] = strings.ToUpper(t)
		}
	}

	appLogger.Info("Insider Trading Tracker",
		logger.StringField("date", dateStr),
		logger.StringField("mode", mode),
		logger.StringField("tickers", strings.Join(tickers, ", ")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := func(done, total int) {
		appLogger.Info("Collection progress", logger.IntField("done", done), logger.IntField("total", total))
	}

	var trades []entity.InsiderTrade
	var err error
	switch mode {
	case "watchlist":
		trades, err = collector.CollectWatchlist(ctx, tickers, maxFilings(cfg, mode), progress)
	case "daterange":
		start, end := collectStart, collectEnd
		if start == "" {
			start = dateStr
		}
		if end == "" {
			end = dateStr
		}
		if utils.ValidateDate(start) != nil || utils.ValidateDate(end) != nil {
			appLogger.Fatal("Invalid --start/--end, expected YYYY-MM-DD",
				logger.StringField("start", start),
				logger.StringField("end", end),
			)
		}
		trades, err = collector.CollectByDateRange(ctx, start, end, maxFilings(cfg, mode), progress)
	default:
		appLogger.Fatal("Unknown mode, expected watchlist or daterange", logger.StringField("mode", mode))
	}
	if err != nil {
		appLogger.Fatal("Collection failed", logger.ErrorField(err))
	}

	if len(trades) == 0 {
		appLogger.Info("No trades collected")
		return
	}
	appLogger.Info("Collection complete", logger.IntField("trades", len(trades)))

	excel := exporter.NewExcelExporter(cfg, appLogger)
	path, err := excel.Save(trades, dateStr)
	if err != nil {
		appLogger.Fatal("Spreadsheet export failed", logger.ErrorField(err))
	}
	appLogger.Info("Done", logger.StringField("file", path))
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, appLogger, collector := buildTracker()
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scheduler.Enabled {
		var notifier telegram.Notifier
		if cfg.Telegram.BotToken != "" {
			var err error
			notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
			if err != nil {
				appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
			}
		}
		excel := exporter.NewExcelExporter(cfg, appLogger)
		schedulerSvc := service.NewSchedulerService(cfg, appLogger, collector, excel, notifier)
		if err := schedulerSvc.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start scheduler", logger.ErrorField(err))
		}
	}

	e := echo.New()
	e.HideBanner = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	tradesHandler := delivery.NewTradesHandler(cfg, collector, appLogger)
	apiV1 := e.Group("/api/v1")
	tradesHandler.RegisterRoutes(apiV1)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}
	appLogger.Info("Server exiting")
}

// buildTracker wires the repositories and collector from configuration.
func buildTracker() (*config.Config, *logger.Logger, service.CollectorService) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	client := repository.NewEdgarClient(cfg, appLogger)
	cikRepo := repository.NewCIKRepository(cfg, appLogger, client)
	filingsRepo := repository.NewFilingsRepository(cfg, appLogger, client)
	docsRepo := repository.NewDocumentsRepository(cfg, appLogger, client)

	collector := service.NewCollectorService(cfg, appLogger, cikRepo, filingsRepo, docsRepo)
	return cfg, appLogger, collector
}

func maxFilings(cfg *config.Config, mode string) int {
	if collectMax > 0 {
		return collectMax
	}
	if mode == "daterange" {
		return cfg.Collector.MaxSearchFilings
	}
	return cfg.Collector.MaxFilingsPerTicker
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	collectCmd.Flags().StringVar(&collectMode, "mode", "", "Collection mode: watchlist or daterange (default from config)")
	collectCmd.Flags().StringSliceVar(&collectTickers, "tickers", nil, "Tickers to collect (default: configured watchlist)")
	collectCmd.Flags().StringVar(&collectStart, "start", "", "Date-range start (YYYY-MM-DD)")
	collectCmd.Flags().StringVar(&collectEnd, "end", "", "Date-range end (YYYY-MM-DD)")
	collectCmd.Flags().StringVar(&collectDate, "date", "", "Date used for the output file name (default: today)")
	collectCmd.Flags().IntVar(&collectMax, "max-filings", 0, "Max filings per ticker (watchlist) or in total (daterange)")

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing insider-tracker CLI: %s\n", err)
		os.Exit(1)
	}
}
