package telegram

import (
	"fmt"
	"strings"
	"time"

	"insider-tracker/pkg/utils"
)

// FormatCollectionSummary renders a Markdown summary for one finished
// collection run.
func FormatCollectionSummary(mode string, tickers, trades int, buyValue, sellValue float64, took time.Duration) string {
	var sb strings.Builder

	sb.WriteString("*Insider Trading Tracker*\n")
	sb.WriteString(fmt.Sprintf("Mode: `%s`\n", mode))
	sb.WriteString(fmt.Sprintf("Tickers scanned: %d\n", tickers))
	sb.WriteString(fmt.Sprintf("Transactions: %d\n", trades))
	sb.WriteString(fmt.Sprintf("Buy volume: %s\n", utils.FormatMoney(buyValue)))
	sb.WriteString(fmt.Sprintf("Sell volume: %s\n", utils.FormatMoney(sellValue)))
	sb.WriteString(fmt.Sprintf("Took: %s", took.Round(time.Second)))

	return sb.String()
}
