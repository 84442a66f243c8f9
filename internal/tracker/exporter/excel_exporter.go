// Package exporter writes collected transactions to styled spreadsheets.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"insider-tracker/internal/entity"
	"insider-tracker/internal/tracker/config"
	"insider-tracker/pkg/logger"
	"insider-tracker/pkg/utils"

	"github.com/xuri/excelize/v2"
)

const (
	sheetTitle     = "SEC Form 4 Insider Trades"
	maxColumnWidth = 40
	headerRow      = 2
	firstDataRow   = 3
)

// column pairs a header with the trade field it renders.
type column struct {
	header string
	value  func(t entity.InsiderTrade) interface{}
}

var columns = []column{
	{"Filing Date", func(t entity.InsiderTrade) interface{} { return t.FilingDate }},
	{"Ticker", func(t entity.InsiderTrade) interface{} { return t.Ticker }},
	{"Company", func(t entity.InsiderTrade) interface{} { return t.Company }},
	{"Insider Name", func(t entity.InsiderTrade) interface{} { return t.InsiderName }},
	{"Insider Title", func(t entity.InsiderTrade) interface{} { return t.InsiderTitle }},
	{"Type", func(t entity.InsiderTrade) interface{} { return t.TransactionType }},
	{"Code", func(t entity.InsiderTrade) interface{} { return t.TransactionCode }},
	{"Shares", func(t entity.InsiderTrade) interface{} { return t.Shares }},
	{"Price/Share", func(t entity.InsiderTrade) interface{} { return t.PricePerShare }},
	{"Total Value", func(t entity.InsiderTrade) interface{} { return utils.FormatMoney(t.TotalValue) }},
	{"Shares After", func(t entity.InsiderTrade) interface{} { return t.SharesOwnedAfter }},
	{"Ownership", func(t entity.InsiderTrade) interface{} { return t.OwnershipType }},
	{"Filing URL", func(t entity.InsiderTrade) interface{} { return t.FilingURL }},
}

// Exporter persists a collection run's records.
type Exporter interface {
	// Save writes the trades to the day's spreadsheet, replacing the sheet
	// for dateStr when it already exists. Returns the written file path,
	// or "" when there was nothing to write.
	Save(trades []entity.InsiderTrade, dateStr string) (string, error)
}

type excelExporter struct {
	cfg *config.Config
	log *logger.Logger
}

// NewExcelExporter creates an Exporter writing xlsx files into the
// configured data directory.
func NewExcelExporter(cfg *config.Config, log *logger.Logger) Exporter {
	return &excelExporter{cfg: cfg, log: log}
}

func (e *excelExporter) Save(trades []entity.InsiderTrade, dateStr string) (string, error) {
	if len(trades) == 0 {
		e.log.Info("No trades to export")
		return "", nil
	}

	if err := os.MkdirAll(e.cfg.Collector.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	path := filepath.Join(e.cfg.Collector.DataDir, fmt.Sprintf("insider-trades-%s.xlsx", dateStr))

	f, fresh, err := openWorkbook(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sheet := dateStr
	if existing, err := f.GetSheetIndex(sheet); err == nil && existing != -1 {
		// DeleteSheet refuses to remove a workbook's last worksheet, so a
		// same-date rerun would write over the old rows and leave stale
		// trailing data. Build the fresh sheet first, then drop and rename.
		e.log.Info("Replacing existing sheet", logger.StringField("sheet", sheet))
		const rebuildSheet = "rebuild-tmp"
		idx, err := f.NewSheet(rebuildSheet)
		if err != nil {
			return "", fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
		if err := f.DeleteSheet(sheet); err != nil {
			return "", fmt.Errorf("replacing sheet %s: %w", sheet, err)
		}
		if err := f.SetSheetName(rebuildSheet, sheet); err != nil {
			return "", fmt.Errorf("renaming sheet %s: %w", sheet, err)
		}
		f.SetActiveSheet(idx)
	} else {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return "", fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
		f.SetActiveSheet(idx)
		if fresh {
			// Drop the workbook's default sheet now that ours exists.
			_ = f.DeleteSheet("Sheet1")
		}
	}

	if err := e.writeSheet(f, sheet, trades); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	e.log.Info("Spreadsheet written",
		logger.StringField("path", path),
		logger.StringField("sheet", sheet),
		logger.IntField("trades", len(trades)),
	)
	return path, nil
}

func openWorkbook(path string) (*excelize.File, bool, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("opening workbook: %w", err)
		}
		return f, false, nil
	}
	return excelize.NewFile(), true, nil
}

func (e *excelExporter) writeSheet(f *excelize.File, sheet string, trades []entity.InsiderTrade) error {
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}

	// Merged title row.
	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("merging title row: %w", err)
	}
	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s", sheetTitle, sheet)); err != nil {
		return err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle); err != nil {
		return err
	}

	// Header row.
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col.header); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A2", lastCol+"2", headerStyle); err != nil {
		return err
	}

	// Data rows.
	for rowIdx, trade := range trades {
		for colIdx, col := range columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, firstDataRow+rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, col.value(trade)); err != nil {
				return err
			}
		}
	}

	e.fitColumnWidths(f, sheet, trades)

	lastRow := firstDataRow + len(trades) - 1
	if err := f.AutoFilter(sheet, fmt.Sprintf("A%d:%s%d", headerRow, lastCol, lastRow), nil); err != nil {
		return fmt.Errorf("setting auto filter: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: "A3",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header panes: %w", err)
	}
	return nil
}

func (e *excelExporter) fitColumnWidths(f *excelize.File, sheet string, trades []entity.InsiderTrade) {
	for i, col := range columns {
		width := len(col.header)
		for _, trade := range trades {
			cell := fmt.Sprint(col.value(trade))
			if len(cell) > width {
				width = len(cell)
			}
		}
		if width+3 < maxColumnWidth {
			width += 3
		} else {
			width = maxColumnWidth
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		_ = f.SetColWidth(sheet, name, name, float64(width))
	}
}
