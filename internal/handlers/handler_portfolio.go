package handlers

import (
	"net/http"

	portssvc "github.com/finledge/stockfolio_backend/internal/core/ports/services"
	"github.com/finledge/stockfolio_backend/internal/dto"
	"github.com/finledge/stockfolio_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// PortfolioHandler exposes the portfolio ledger engine over HTTP.
type PortfolioHandler struct {
	portfolioService portssvc.PortfolioSvcFacade
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService portssvc.PortfolioSvcFacade) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// accountID resolves the authenticated user's account. Writes the error
// response itself when resolution fails.
func (h *PortfolioHandler) accountID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return "", false
	}
	account, err := h.portfolioService.AccountForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return account.AccountID, true
}

// Buy handles POST /portfolio/buy.
func (h *PortfolioHandler) Buy(c *gin.Context) {
	var req dto.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	balance, err := h.portfolioService.Buy(c.Request.Context(), accountID, req.Symbol, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{CashBalance: balance})
}

// Sell handles POST /portfolio/sell.
func (h *PortfolioHandler) Sell(c *gin.Context) {
	var req dto.SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	balance, err := h.portfolioService.Sell(c.Request.Context(), accountID, req.Symbol, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{CashBalance: balance})
}

// Deposit handles POST /portfolio/deposit.
func (h *PortfolioHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	balance, err := h.portfolioService.Deposit(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{CashBalance: balance})
}

// GetPortfolio handles GET /portfolio.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	portfolio, err := h.portfolioService.GetHoldings(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPortfolioResponse(portfolio))
}

// GetHistory handles GET /portfolio/history.
func (h *PortfolioHandler) GetHistory(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	history, err := h.portfolioService.GetHistory(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponse(history))
}

// ListSellable handles GET /portfolio/sellable.
func (h *PortfolioHandler) ListSellable(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	symbols, err := h.portfolioService.ListSellable(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SellableSymbolsResponse{Symbols: symbols})
}

// Quote handles GET /quote/:symbol.
func (h *PortfolioHandler) Quote(c *gin.Context) {
	quote, err := h.portfolioService.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}
