package entity

// InsiderTrade is one reported Form 4 transaction line, normalized.
type InsiderTrade struct {
	FilingDate       string  `json:"filing_date"`
	Ticker           string  `json:"ticker"`
	Company          string  `json:"company"`
	InsiderName      string  `json:"insider_name"`
	InsiderTitle     string  `json:"insider_title"`
	TransactionType  string  `json:"transaction_type"`
	TransactionCode  string  `json:"transaction_code"`
	Shares           float64 `json:"shares"`
	PricePerShare    float64 `json:"price_per_share"`
	TotalValue       float64 `json:"total_value"`
	SharesOwnedAfter float64 `json:"shares_owned_after"`
	OwnershipType    string  `json:"ownership_type"`
	FilingURL        string  `json:"filing_url"`
}

// Filing is one discovered Form 4 document. Ticker and Company may be
// empty when the filing was found through the full-text search index.
type Filing struct {
	AccessionNumber string `json:"accession_number"`
	FilingDate      string `json:"filing_date"`
	PrimaryDocument string `json:"primary_document"`
	URL             string `json:"url"`
	Ticker          string `json:"ticker"`
	Company         string `json:"company"`
}

// TransactionCodes maps the Form 4 single-letter transaction codes to
// readable labels. Codes outside this table pass through as-is.
var TransactionCodes = map[string]string{
	"P": "Purchase",
	"S": "Sale",
	"A": "Grant/Award",
	"D": "Disposition (Gift)",
	"F": "Tax Withholding",
	"M": "Option Exercise",
	"C": "Conversion",
	"G": "Gift",
	"J": "Other",
	"K": "Equity Swap",
	"U": "Tender of Shares",
	"W": "Will/Inheritance",
	"X": "Option Exercise (OTM)",
	"Z": "Trust",
}

// TransactionTypeLabel resolves a transaction code to its readable label,
// passing unrecognized codes through unchanged.
func TransactionTypeLabel(code string) string {
	if label, ok := TransactionCodes[code]; ok {
		return label
	}
	return code
}

// BuySellTotals sums the dollar value of open-market purchases (code "P")
// and sales (code "S"). Grants, option exercises, tax withholdings and
// the other codes count toward neither side.
func BuySellTotals(trades []InsiderTrade) (buyValue, sellValue float64) {
	for _, t := range trades {
		switch t.TransactionCode {
		case "P":
			buyValue += t.TotalValue
		case "S":
			sellValue += t.TotalValue
		}
	}
	return buyValue, sellValue
}
