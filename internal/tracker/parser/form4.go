// Package parser extracts normalized insider transactions from Form 4
// filing documents.
package parser

import (
	"math"
	"strings"

	"insider-tracker/internal/entity"
	"insider-tracker/pkg/utils"

	"github.com/PuerkitoBio/goquery"
)

// ParseForm4 parses one Form 4 document into zero or more transactions.
// It is a pure function of its input: the same text always yields the
// same records, in document order (non-derivative table first). Missing
// blocks and fields degrade to empty strings and zeros, never errors.
func ParseForm4(xmlContent, filingURL string) []entity.InsiderTrade {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(xmlContent))
	if err != nil {
		return nil
	}

	var company, ticker string
	if issuer := findTag(doc.Selection, "issuer"); issuer != nil {
		company = tagText(issuer, "issuerName")
		ticker = strings.ToUpper(tagText(issuer, "issuerTradingSymbol"))
	}

	var insiderName, insiderTitle string
	if owner := findTag(doc.Selection, "reportingOwner"); owner != nil {
		if ownerID := findTag(owner, "reportingOwnerId"); ownerID != nil {
			insiderName = tagText(ownerID, "rptOwnerName")
		}
		if rel := findTag(owner, "reportingOwnerRelationship"); rel != nil {
			insiderTitle = relationshipTitle(rel)
		}
	}

	var trades []entity.InsiderTrade
	tables := []struct {
		table string
		line  string
	}{
		{"nonDerivativeTable", "nonDerivativeTransaction"},
		{"derivativeTable", "derivativeTransaction"},
	}
	for _, t := range tables {
		block := findTag(doc.Selection, t.table)
		if block == nil {
			continue
		}
		block.Find(strings.ToLower(t.line)).Each(func(_ int, txn *goquery.Selection) {
			trade := parseTransaction(txn)
			trade.Company = company
			trade.Ticker = ticker
			trade.InsiderName = insiderName
			trade.InsiderTitle = insiderTitle
			trade.FilingURL = filingURL
			trades = append(trades, trade)
		})
	}
	return trades
}

func parseTransaction(txn *goquery.Selection) entity.InsiderTrade {
	var code string
	if coding := findTag(txn, "transactionCoding"); coding != nil {
		code = tagText(coding, "transactionCode")
	}

	var shares, price float64
	var acquiredDisposed string
	if amounts := findTag(txn, "transactionAmounts"); amounts != nil {
		shares = utils.ParseFloat(valueOf(amounts, "transactionShares"))
		price = utils.ParseFloat(valueOf(amounts, "transactionPricePerShare"))
		acquiredDisposed = valueOf(amounts, "transactionAcquiredDisposedCode")
	}

	var sharesAfter float64
	if post := findTag(txn, "postTransactionAmounts"); post != nil {
		sharesAfter = utils.ParseFloat(valueOf(post, "sharesOwnedFollowingTransaction"))
	}

	ownership := "D"
	if nature := findTag(txn, "ownershipNature"); nature != nil {
		if v := valueOf(nature, "directOrIndirectOwnership"); v != "" {
			ownership = v
		}
	}
	ownershipType := "Indirect"
	if ownership == "D" {
		ownershipType = "Direct"
	}

	// Disposals are normalized to a negative share count regardless of the
	// sign the document carried.
	if acquiredDisposed == "D" {
		shares = -math.Abs(shares)
	}

	return entity.InsiderTrade{
		TransactionCode:  code,
		TransactionType:  entity.TransactionTypeLabel(code),
		Shares:           shares,
		PricePerShare:    price,
		TotalValue:       math.Abs(shares) * price,
		SharesOwnedAfter: sharesAfter,
		OwnershipType:    ownershipType,
	}
}

// relationshipTitle derives the comma-joined insider title from the
// relationship block's four boolean flags, in the fixed Form 4 order.
func relationshipTitle(rel *goquery.Selection) string {
	var titles []string
	if tagBool(rel, "isDirector") {
		titles = append(titles, "Director")
	}
	if tagBool(rel, "isOfficer") {
		if t := tagText(rel, "officerTitle"); t != "" {
			titles = append(titles, t)
		} else {
			titles = append(titles, "Officer")
		}
	}
	if tagBool(rel, "isTenPercentOwner") {
		titles = append(titles, "10% Owner")
	}
	if tagBool(rel, "isOther") {
		if t := tagText(rel, "otherText"); t != "" {
			titles = append(titles, t)
		} else {
			titles = append(titles, "Other")
		}
	}
	return strings.Join(titles, ", ")
}
