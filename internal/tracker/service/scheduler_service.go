package service

import (
	"context"
	"time"

	"insider-tracker/internal/entity"
	"insider-tracker/internal/tracker/config"
	"insider-tracker/internal/tracker/exporter"
	"insider-tracker/pkg/logger"
	"insider-tracker/pkg/telegram"
	"insider-tracker/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the watchlist collection on a cron schedule,
// exporting each run and optionally announcing it over Telegram.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	RunOnce(ctx context.Context)
}

type schedulerService struct {
	cfg       *config.Config
	log       *logger.Logger
	collector CollectorService
	exporter  exporter.Exporter
	notifier  telegram.Notifier
	cron      *cron.Cron
}

// NewSchedulerService creates a new SchedulerService. The notifier may be
// nil, in which case runs are only logged.
func NewSchedulerService(cfg *config.Config, log *logger.Logger, collector CollectorService, exp exporter.Exporter, notifier telegram.Notifier) SchedulerService {
	return &schedulerService{
		cfg:       cfg,
		log:       log,
		collector: collector,
		exporter:  exp,
		notifier:  notifier,
		cron:      cron.New(),
	}
}

// Start registers the collection job and starts the cron loop. The loop
// stops when ctx is canceled.
func (s *schedulerService) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Scheduler.CronSpec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Scheduler started", logger.StringField("cron_spec", s.cfg.Scheduler.CronSpec))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the cron loop; running jobs finish.
func (s *schedulerService) Stop() {
	s.cron.Stop()
	s.log.Info("Scheduler stopped")
}

// RunOnce performs one scheduled collection cycle.
func (s *schedulerService) RunOnce(ctx context.Context) {
	started := time.Now()

	trades, err := s.collector.CollectWatchlist(ctx, s.cfg.Collector.Watchlist, s.cfg.Collector.MaxFilingsPerTicker, nil)
	if err != nil {
		s.log.Error("Scheduled collection failed", logger.ErrorField(err))
		return
	}
	if len(trades) == 0 {
		s.log.Info("Scheduled collection found no trades")
		return
	}

	if _, err := s.exporter.Save(trades, utils.Today()); err != nil {
		s.log.Error("Scheduled export failed", logger.ErrorField(err))
		return
	}

	if s.notifier == nil {
		return
	}
	buyValue, sellValue := entity.BuySellTotals(trades)
	summary := telegram.FormatCollectionSummary(
		s.cfg.Collector.Mode,
		len(s.cfg.Collector.Watchlist),
		len(trades),
		buyValue,
		sellValue,
		time.Since(started),
	)
	if err := s.notifier.SendMessage(summary); err != nil {
		s.log.Error("Telegram notification failed", logger.ErrorField(err))
	}
}
