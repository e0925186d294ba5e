package dto

import (
	"github.com/finledge/stockfolio_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// HoldingResponse is one valued position line.
type HoldingResponse struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Shares    int64           `json:"shares"`
	UnitValue decimal.Decimal `json:"unitValue"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// PortfolioResponse aggregates holdings, cash and the grand total.
type PortfolioResponse struct {
	Holdings   []HoldingResponse `json:"holdings"`
	Cash       decimal.Decimal   `json:"cash"`
	GrandTotal decimal.Decimal   `json:"grandTotal"`
}

// ToPortfolioResponse converts a domain portfolio to the response DTO.
func ToPortfolioResponse(p *domain.Portfolio) PortfolioResponse {
	resp := PortfolioResponse{
		Holdings:   make([]HoldingResponse, len(p.Holdings)),
		Cash:       p.Cash,
		GrandTotal: p.GrandTotal,
	}
	for i, h := range p.Holdings {
		resp.Holdings[i] = HoldingResponse{
			Symbol:    h.Symbol,
			Name:      h.Name,
			Shares:    h.Shares,
			UnitValue: h.UnitValue,
			LineTotal: h.LineTotal,
		}
	}
	return resp
}

// QuoteResponse is a live price for one symbol.
type QuoteResponse struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// ToQuoteResponse converts a domain quote to the response DTO.
func ToQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{Symbol: q.Symbol, Name: q.Name, Price: q.Price}
}

// SellableSymbolsResponse lists the symbols an account can currently sell.
type SellableSymbolsResponse struct {
	Symbols []string `json:"symbols"`
}
