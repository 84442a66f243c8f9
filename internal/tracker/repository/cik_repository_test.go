package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"insider-tracker/internal/tracker/config"
	"insider-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickersJSON = `{
  "0": {"cik_str": 320193, "ticker": "aapl", "title": "Apple Inc."},
  "1": {"cik_str": 789019, "ticker": "MSFT", "title": "MICROSOFT CORP"}
}`

func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.EDGAR.RequestDelay = time.Millisecond
	cfg.EDGAR.TickersURL = serverURL + "/files/company_tickers.json"
	cfg.EDGAR.SubmissionsURL = serverURL + "/submissions/CIK%s.json"
	cfg.EDGAR.SearchURL = serverURL + "/search-index"
	cfg.EDGAR.ArchiveBaseURL = serverURL + "/Archives/edgar/data"
	cfg.EDGAR.FeedURL = serverURL + "/feed?cik=%s&count=%d"
	cfg.Collector.CacheDir = t.TempDir()
	cfg.Collector.DataDir = t.TempDir()
	return cfg
}

func newCIKFixture(t *testing.T) (*config.Config, *int, *httptest.Server) {
	t.Helper()
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(tickersJSON))
	}))
	t.Cleanup(server.Close)
	return testConfig(t, server.URL), &requests, server
}

func TestResolveAllBuildsNormalizedMap(t *testing.T) {
	cfg, requests, _ := newCIKFixture(t)
	repo := NewCIKRepository(cfg, logger.NewNop(), NewEdgarClient(cfg, logger.NewNop()))

	mapping, err := repo.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, *requests)

	numeric := regexp.MustCompile(`^\d{10}$`)
	require.Len(t, mapping, 2)
	for ticker, cik := range mapping {
		assert.Equal(t, strings.ToUpper(ticker), ticker, "keys are uppercase")
		assert.True(t, numeric.MatchString(cik), "CIK %q is a 10-digit string", cik)
	}
	assert.Equal(t, "0000320193", mapping["AAPL"])
	assert.Equal(t, "0000789019", mapping["MSFT"])

	// Cache file was written wholesale.
	_, err = os.Stat(filepath.Join(cfg.Collector.CacheDir, cikCacheFile))
	assert.NoError(t, err)
}

func TestResolveAllUsesInProcessMemo(t *testing.T) {
	cfg, requests, _ := newCIKFixture(t)
	repo := NewCIKRepository(cfg, logger.NewNop(), NewEdgarClient(cfg, logger.NewNop()))

	_, err := repo.ResolveAll(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(cfg.Collector.CacheDir, cikCacheFile)))

	_, err = repo.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, *requests, "second resolve within the process stays off the network")
}

func TestResolveAllFreshCacheFileSkipsNetwork(t *testing.T) {
	cfg, requests, _ := newCIKFixture(t)
	cachePath := filepath.Join(cfg.Collector.CacheDir, cikCacheFile)
	require.NoError(t, os.WriteFile(cachePath, []byte(`{"FOO":"0000000042"}`), 0o644))

	repo := NewCIKRepository(cfg, logger.NewNop(), NewEdgarClient(cfg, logger.NewNop()))
	mapping, err := repo.ResolveAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, *requests)
	assert.Equal(t, map[string]string{"FOO": "0000000042"}, mapping)
}

func TestResolveAllStaleCacheFileTriggersRebuild(t *testing.T) {
	cfg, requests, _ := newCIKFixture(t)
	cachePath := filepath.Join(cfg.Collector.CacheDir, cikCacheFile)
	require.NoError(t, os.WriteFile(cachePath, []byte(`{"OLD":"0000000001"}`), 0o644))
	stale := time.Now().Add(-25 * time.Hour)
	require.NoError(t, os.Chtimes(cachePath, stale, stale))

	repo := NewCIKRepository(cfg, logger.NewNop(), NewEdgarClient(cfg, logger.NewNop()))
	mapping, err := repo.ResolveAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, *requests, "a 25h-old cache is rebuilt even though it holds valid JSON")
	assert.NotContains(t, mapping, "OLD")
	assert.Contains(t, mapping, "AAPL")

	// The cache file was overwritten, not merged.
	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "OLD")
}

func TestResolveAllUpstreamFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	repo := NewCIKRepository(cfg, logger.NewNop(), NewEdgarClient(cfg, logger.NewNop()))

	_, err := repo.ResolveAll(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(cfg.Collector.CacheDir, cikCacheFile))
	assert.True(t, os.IsNotExist(statErr), "no cache file on failed rebuild")
}
