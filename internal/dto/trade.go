package dto

import (
	"time"

	"github.com/finledge/stockfolio_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BuyRequest defines the data needed to buy shares.
type BuyRequest struct {
	Symbol   string `json:"symbol" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// SellRequest defines the data needed to sell shares.
type SellRequest struct {
	Symbol   string `json:"symbol" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// DepositRequest defines the data needed to deposit cash.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// BalanceResponse returns the cash balance after a mutating operation.
type BalanceResponse struct {
	CashBalance decimal.Decimal `json:"cashBalance"`
}

// TradeRecordResponse is one line of the trade history.
type TradeRecordResponse struct {
	TradeID    int64           `json:"tradeID"`
	Symbol     string          `json:"symbol"`
	ShareDelta int64           `json:"shareDelta"` // negative = a sale
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	ExecutedAt time.Time       `json:"executedAt"`
}

// HistoryResponse wraps the ordered trade history.
type HistoryResponse struct {
	Trades []TradeRecordResponse `json:"trades"`
}

// ToHistoryResponse converts domain trade records to the response DTO.
func ToHistoryResponse(records []domain.TradeRecord) HistoryResponse {
	resp := HistoryResponse{Trades: make([]TradeRecordResponse, len(records))}
	for i, r := range records {
		resp.Trades[i] = TradeRecordResponse{
			TradeID:    r.TradeID,
			Symbol:     r.Symbol,
			ShareDelta: r.ShareDelta,
			UnitPrice:  r.UnitPrice,
			ExecutedAt: r.ExecutedAt,
		}
	}
	return resp
}
