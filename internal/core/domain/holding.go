package domain

import "github.com/shopspring/decimal"

// Quote is a live price for one symbol as returned by the quote provider.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Holding is one valued position line: a symbol currently held (net shares
// > 0) priced at the latest quote. Derived, never stored.
type Holding struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Shares    int64           `json:"shares"`
	UnitValue decimal.Decimal `json:"unitValue"`
	LineTotal decimal.Decimal `json:"lineTotal"` // Shares * UnitValue
}

// Portfolio aggregates an account's holdings with its cash balance.
type Portfolio struct {
	Holdings   []Holding       `json:"holdings"`
	Cash       decimal.Decimal `json:"cash"`
	GrandTotal decimal.Decimal `json:"grandTotal"` // Cash + sum of line totals
}
