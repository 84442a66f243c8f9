package service

import (
	"context"
	"fmt"
	"strings"

	"insider-tracker/internal/entity"
	"insider-tracker/internal/tracker/config"
	"insider-tracker/internal/tracker/parser"
	"insider-tracker/internal/tracker/repository"
	"insider-tracker/pkg/logger"
)

// ProgressFunc reports collection progress. It is invoked with (0, total)
// before the first unit of work and with (done, total) after every unit.
type ProgressFunc func(done, total int)

// CollectorService runs the two Form 4 collection strategies.
type CollectorService interface {
	// CollectWatchlist collects recent Form 4 transactions for each ticker.
	// Unresolvable tickers and per-ticker fetch failures are skipped; a CIK
	// map rebuild failure aborts the run.
	CollectWatchlist(ctx context.Context, tickers []string, maxPerTicker int, progress ProgressFunc) ([]entity.InsiderTrade, error)
	// CollectByDateRange collects every Form 4 transaction filed inside
	// [startDate, endDate], discovered through the full-text search index.
	CollectByDateRange(ctx context.Context, startDate, endDate string, maxFilings int, progress ProgressFunc) ([]entity.InsiderTrade, error)
	// RecentFilings lists a ticker's latest Form 4 filing references from
	// its Atom feed, without downloading the documents.
	RecentFilings(ctx context.Context, ticker string, max int) ([]entity.Filing, error)
}

type collectorService struct {
	cfg         *config.Config
	log         *logger.Logger
	cikRepo     repository.CIKRepository
	filingsRepo repository.FilingsRepository
	docsRepo    repository.DocumentsRepository
}

// NewCollectorService creates a new CollectorService.
func NewCollectorService(cfg *config.Config, log *logger.Logger, cikRepo repository.CIKRepository, filingsRepo repository.FilingsRepository, docsRepo repository.DocumentsRepository) CollectorService {
	return &collectorService{
		cfg:         cfg,
		log:         log,
		cikRepo:     cikRepo,
		filingsRepo: filingsRepo,
		docsRepo:    docsRepo,
	}
}

func (s *collectorService) CollectWatchlist(ctx context.Context, tickers []string, maxPerTicker int, progress ProgressFunc) ([]entity.InsiderTrade, error) {
	cikMap, err := s.cikRepo.ResolveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving CIK map: %w", err)
	}

	s.log.Info("Watchlist collection starting", logger.IntField("tickers", len(tickers)))

	var trades []entity.InsiderTrade
	total := len(tickers)
	report(progress, 0, total)

	for i, raw := range tickers {
		ticker := strings.ToUpper(raw)

		cik, ok := cikMap[ticker]
		if !ok {
			s.log.Warn("No CIK found for ticker, skipping", logger.StringField("ticker", ticker))
			report(progress, i+1, total)
			continue
		}

		filings, err := s.filingsRepo.ListForm4Filings(ctx, cik, ticker, maxPerTicker)
		if err != nil {
			s.log.Error("Filing list fetch failed, skipping ticker",
				logger.StringField("ticker", ticker),
				logger.ErrorField(err),
			)
			report(progress, i+1, total)
			continue
		}
		s.log.Info("Form 4 filings found",
			logger.StringField("ticker", ticker),
			logger.StringField("cik", cik),
			logger.IntField("filings", len(filings)),
		)

		for _, filing := range filings {
			for _, trade := range s.fetchAndParse(ctx, filing.URL) {
				// The filing reference is authoritative for these fields.
				trade.Ticker = ticker
				trade.FilingDate = filing.FilingDate
				trades = append(trades, trade)
			}
		}
		report(progress, i+1, total)
	}

	s.log.Info("Watchlist collection finished", logger.IntField("trades", len(trades)))
	return trades, nil
}

func (s *collectorService) CollectByDateRange(ctx context.Context, startDate, endDate string, maxFilings int, progress ProgressFunc) ([]entity.InsiderTrade, error) {
	filings, err := s.filingsRepo.SearchByDateRange(ctx, startDate, endDate, maxFilings)
	if err != nil {
		return nil, fmt.Errorf("searching filings: %w", err)
	}
	if len(filings) == 0 {
		s.log.Info("No Form 4 filings in date range",
			logger.StringField("start", startDate),
			logger.StringField("end", endDate),
		)
		return nil, nil
	}

	var trades []entity.InsiderTrade
	total := len(filings)
	report(progress, 0, total)

	for i, filing := range filings {
		for _, trade := range s.fetchAndParse(ctx, filing.URL) {
			if trade.Ticker == "" && filing.Ticker != "" {
				trade.Ticker = filing.Ticker
			}
			if trade.Company == "" && filing.Company != "" {
				trade.Company = filing.Company
			}
			trade.FilingDate = filing.FilingDate
			trades = append(trades, trade)
		}
		report(progress, i+1, total)
	}

	s.log.Info("Date-range collection finished",
		logger.IntField("filings", total),
		logger.IntField("trades", len(trades)),
	)
	return trades, nil
}

func (s *collectorService) RecentFilings(ctx context.Context, ticker string, max int) ([]entity.Filing, error) {
	cikMap, err := s.cikRepo.ResolveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving CIK map: %w", err)
	}

	ticker = strings.ToUpper(ticker)
	cik, ok := cikMap[ticker]
	if !ok {
		return nil, fmt.Errorf("no CIK found for ticker %s", ticker)
	}
	return s.filingsRepo.RecentFeedFilings(ctx, cik, ticker, max)
}

// fetchAndParse downloads and parses one filing document. A failed
// download is logged and yields no records; it never aborts the batch.
func (s *collectorService) fetchAndParse(ctx context.Context, url string) []entity.InsiderTrade {
	xmlContent, err := s.docsRepo.Fetch(ctx, url)
	if err != nil {
		s.log.Error("Document download failed, skipping",
			logger.StringField("url", url),
			logger.ErrorField(err),
		)
		return nil
	}
	return parser.ParseForm4(xmlContent, url)
}

func report(progress ProgressFunc, done, total int) {
	if progress != nil {
		progress(done, total)
	}
}
