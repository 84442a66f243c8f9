package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"insider-tracker/internal/tracker/config"
	"insider-tracker/pkg/logger"

	"github.com/patrickmn/go-cache"
)

const (
	cikCacheFile = "company_tickers.json"
	cikCacheTTL  = 24 * time.Hour
	cikMemoKey   = "cik_map"
)

// CIKRepository resolves trading symbols to SEC CIK identifiers.
type CIKRepository interface {
	// ResolveAll returns the full uppercase-ticker to zero-padded-CIK map.
	ResolveAll(ctx context.Context) (map[string]string, error)
}

type cikRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	client *EdgarClient
	memo   *cache.Cache
}

// NewCIKRepository creates a new CIKRepository backed by a 24h file cache
// and an in-process memo with the same TTL.
func NewCIKRepository(cfg *config.Config, log *logger.Logger, client *EdgarClient) CIKRepository {
	return &cikRepository{
		cfg:    cfg,
		log:    log,
		client: client,
		memo:   cache.New(cikCacheTTL, time.Hour),
	}
}

func (r *cikRepository) ResolveAll(ctx context.Context) (map[string]string, error) {
	if cached, ok := r.memo.Get(cikMemoKey); ok {
		return cached.(map[string]string), nil
	}

	cachePath := filepath.Join(r.cfg.Collector.CacheDir, cikCacheFile)
	if info, err := os.Stat(cachePath); err == nil && time.Since(info.ModTime()) < cikCacheTTL {
		mapping, err := r.loadCacheFile(cachePath)
		if err != nil {
			return nil, err
		}
		r.log.Info("Using cached CIK mapping", logger.IntField("tickers", len(mapping)))
		r.memo.SetDefault(cikMemoKey, mapping)
		return mapping, nil
	}

	r.log.Info("Downloading CIK mapping", logger.StringField("url", r.cfg.EDGAR.TickersURL))
	mapping, err := r.rebuild(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.cfg.Collector.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	data, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("encoding CIK cache: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing CIK cache: %w", err)
	}

	r.log.Info("CIK mapping rebuilt", logger.IntField("tickers", len(mapping)))
	r.memo.SetDefault(cikMemoKey, mapping)
	return mapping, nil
}

func (r *cikRepository) loadCacheFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading CIK cache: %w", err)
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("decoding CIK cache: %w", err)
	}
	return mapping, nil
}

func (r *cikRepository) rebuild(ctx context.Context) (map[string]string, error) {
	body, err := r.client.Get(ctx, r.cfg.EDGAR.TickersURL)
	if err != nil {
		return nil, fmt.Errorf("fetching company tickers: %w", err)
	}

	// The upstream index is an object keyed by row number.
	var raw map[string]struct {
		CIK    int64  `json:"cik_str"`
		Ticker string `json:"ticker"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding company tickers: %w", err)
	}

	mapping := make(map[string]string, len(raw))
	for _, entry := range raw {
		if entry.Ticker == "" {
			continue
		}
		mapping[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
	}
	return mapping, nil
}
