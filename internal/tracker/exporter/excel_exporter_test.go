package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"insider-tracker/internal/entity"
	"insider-tracker/internal/tracker/config"
	"insider-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testExporter(t *testing.T) (Exporter, *config.Config) {
	t.Helper()
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Collector.DataDir = t.TempDir()
	return NewExcelExporter(cfg, logger.NewNop()), cfg
}

func sampleTrades() []entity.InsiderTrade {
	return []entity.InsiderTrade{
		{
			FilingDate:       "2024-05-03",
			Ticker:           "AAPL",
			Company:          "Apple Inc.",
			InsiderName:      "Doe Jane",
			InsiderTitle:     "Director",
			TransactionType:  "Purchase",
			TransactionCode:  "P",
			Shares:           1000,
			PricePerShare:    50.25,
			TotalValue:       50250,
			SharesOwnedAfter: 12000,
			OwnershipType:    "Direct",
			FilingURL:        "https://www.sec.gov/Archives/edgar/data/320193/doc.xml",
		},
		{
			FilingDate:      "2024-05-03",
			Ticker:          "MSFT",
			Company:         "Microsoft Corp",
			InsiderName:     "Roe Richard",
			TransactionType: "Sale",
			TransactionCode: "S",
			Shares:          -2000000,
			PricePerShare:   400,
			TotalValue:      800000000,
			OwnershipType:   "Indirect",
		},
	}
}

func TestSaveWritesStyledSheet(t *testing.T) {
	exp, cfg := testExporter(t)

	path, err := exp.Save(sampleTrades(), "2024-05-03")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Collector.DataDir, "insider-trades-2024-05-03.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "2024-05-03")
	assert.NotContains(t, f.GetSheetList(), "Sheet1", "default sheet dropped from fresh workbooks")

	title, err := f.GetCellValue("2024-05-03", "A1")
	require.NoError(t, err)
	assert.Equal(t, "SEC Form 4 Insider Trades - 2024-05-03", title)

	header, err := f.GetCellValue("2024-05-03", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Filing Date", header)

	ticker, err := f.GetCellValue("2024-05-03", "B3")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", ticker)

	// Total Value is rendered through the money formatter.
	value, err := f.GetCellValue("2024-05-03", "J4")
	require.NoError(t, err)
	assert.Equal(t, "$800.00M", value)
}

func TestSaveReplacesSheetForSameDate(t *testing.T) {
	exp, _ := testExporter(t)

	first := sampleTrades()
	path, err := exp.Save(first, "2024-05-03")
	require.NoError(t, err)

	second := sampleTrades()[:1]
	path2, err := exp.Save(second, "2024-05-03")
	require.NoError(t, err)
	assert.Equal(t, path, path2)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("2024-05-03")
	require.NoError(t, err)
	// Title + header + exactly one data row: the old sheet is gone, not
	// merely overwritten with stale rows surviving past the new data.
	assert.Len(t, rows, 3)

	ticker, err := f.GetCellValue("2024-05-03", "B4")
	require.NoError(t, err)
	assert.Empty(t, ticker, "dropped trade's row cleared")

	assert.Equal(t, []string{"2024-05-03"}, f.GetSheetList(), "no leftover working sheets")
}

func TestSaveReopensExistingWorkbook(t *testing.T) {
	exp, _ := testExporter(t)

	path, err := exp.Save(sampleTrades(), "2024-05-03")
	require.NoError(t, err)

	_, err = exp.Save(sampleTrades(), "2024-05-03")
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 1, "rewriting a date never accumulates sheets")
}

func TestSaveEmptyWritesNothing(t *testing.T) {
	exp, cfg := testExporter(t)

	path, err := exp.Save(nil, "2024-05-03")
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(cfg.Collector.DataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
