package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionTypeLabel(t *testing.T) {
	assert.Equal(t, "Purchase", TransactionTypeLabel("P"))
	assert.Equal(t, "Tax Withholding", TransactionTypeLabel("F"))
	assert.Equal(t, "Q", TransactionTypeLabel("Q"), "unknown codes pass through")
}

func TestBuySellTotals(t *testing.T) {
	trades := []InsiderTrade{
		{TransactionCode: "P", Shares: 1000, TotalValue: 50250},
		{TransactionCode: "P", Shares: 10, TotalValue: 750},
		{TransactionCode: "S", Shares: -2000, TotalValue: 800000},
		// Grants, exercises and withholdings move shares without being
		// open-market buys or sells; they count toward neither side.
		{TransactionCode: "A", Shares: 5000, TotalValue: 125000},
		{TransactionCode: "M", Shares: 3000, TotalValue: 90000},
		{TransactionCode: "F", Shares: -400, TotalValue: 20000},
	}

	buy, sell := BuySellTotals(trades)
	assert.Equal(t, 51000.0, buy)
	assert.Equal(t, 800000.0, sell)
}

func TestBuySellTotalsEmpty(t *testing.T) {
	buy, sell := BuySellTotals(nil)
	assert.Zero(t, buy)
	assert.Zero(t, sell)
}
