package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finledge/stockfolio_backend/internal/apperrors"
	"github.com/finledge/stockfolio_backend/internal/core/domain"
	portssvc "github.com/finledge/stockfolio_backend/internal/core/ports/services"
	"github.com/finledge/stockfolio_backend/internal/dto"
	"github.com/finledge/stockfolio_backend/internal/handlers"
	"github.com/finledge/stockfolio_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock PortfolioService ---
type MockPortfolioService struct {
	mock.Mock
}

func (m *MockPortfolioService) Buy(ctx context.Context, accountID, symbol string, quantity int64) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, symbol, quantity)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPortfolioService) Sell(ctx context.Context, accountID, symbol string, quantity int64) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, symbol, quantity)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPortfolioService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPortfolioService) GetHoldings(ctx context.Context, accountID string) (*domain.Portfolio, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioService) GetHistory(ctx context.Context, accountID string) ([]domain.TradeRecord, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TradeRecord), args.Error(1)
}

func (m *MockPortfolioService) ListSellable(ctx context.Context, accountID string) ([]string, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPortfolioService) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockPortfolioService) AccountForUser(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.PortfolioSvcFacade = (*MockPortfolioService)(nil)

// --- Test Suite ---
type PortfolioHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockPortfolioService
	jwtSecret   string
	userID      string
	accountID   string
}

// generateTestToken creates a signed JWT for testing.
func (suite *PortfolioHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "stockfolio-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *PortfolioHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()
	suite.accountID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockService = new(MockPortfolioService)
	handler := handlers.NewPortfolioHandler(suite.mockService)

	v1 := suite.router.Group("/api/v1")
	v1.GET("/portfolio", handler.GetPortfolio)
	v1.GET("/portfolio/history", handler.GetHistory)
	v1.GET("/portfolio/sellable", handler.ListSellable)
	v1.POST("/portfolio/buy", handler.Buy)
	v1.POST("/portfolio/sell", handler.Sell)
	v1.POST("/portfolio/deposit", handler.Deposit)
	v1.GET("/quote/:symbol", handler.Quote)
}

// expectAccountResolution wires the user -> account lookup every
// authenticated portfolio route performs.
func (suite *PortfolioHandlerTestSuite) expectAccountResolution() {
	suite.mockService.On("AccountForUser", mock.Anything, suite.userID).
		Return(&domain.Account{AccountID: suite.accountID, UserID: suite.userID}, nil).Once()
}

func (suite *PortfolioHandlerTestSuite) performRequest(method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		suite.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *PortfolioHandlerTestSuite) TestBuy_Success() {
	suite.expectAccountResolution()
	suite.mockService.On("Buy", mock.Anything, suite.accountID, "AAPL", int64(10)).
		Return(decimal.RequireFromString("9500"), nil).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/portfolio/buy",
		dto.BuyRequest{Symbol: "AAPL", Quantity: 10}, true)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.CashBalance.Equal(decimal.RequireFromString("9500")))
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *PortfolioHandlerTestSuite) TestBuy_Unauthorized() {
	w := suite.performRequest(http.MethodPost, "/api/v1/portfolio/buy",
		dto.BuyRequest{Symbol: "AAPL", Quantity: 10}, false)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Buy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PortfolioHandlerTestSuite) TestBuy_InvalidBody() {
	// quantity fails the gt=0 binding; the service never sees the request
	w := suite.performRequest(http.MethodPost, "/api/v1/portfolio/buy",
		map[string]any{"symbol": "AAPL", "quantity": -1}, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Buy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PortfolioHandlerTestSuite) TestBuy_InsufficientFunds() {
	suite.expectAccountResolution()
	suite.mockService.On("Buy", mock.Anything, suite.accountID, "AAPL", int64(100)).
		Return(decimal.Zero, apperrors.ErrInsufficientFunds).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/portfolio/buy",
		dto.BuyRequest{Symbol: "AAPL", Quantity: 100}, true)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *PortfolioHandlerTestSuite) TestSell_InsufficientShares() {
	suite.expectAccountResolution()
	suite.mockService.On("Sell", mock.Anything, suite.accountID, "AAPL", int64(15)).
		Return(decimal.Zero, apperrors.ErrInsufficientShares).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/portfolio/sell",
		dto.SellRequest{Symbol: "AAPL", Quantity: 15}, true)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *PortfolioHandlerTestSuite) TestSell_Success() {
	suite.expectAccountResolution()
	suite.mockService.On("Sell", mock.Anything, suite.accountID, "AAPL", int64(10)).
		Return(decimal.RequireFromString("10100"), nil).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/portfolio/sell",
		dto.SellRequest{Symbol: "AAPL", Quantity: 10}, true)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.CashBalance.Equal(decimal.RequireFromString("10100")))
}

func (suite *PortfolioHandlerTestSuite) TestDeposit_Success() {
	suite.expectAccountResolution()
	amount := decimal.RequireFromString("250.50")
	suite.mockService.On("Deposit", mock.Anything, suite.accountID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(amount)
	})).Return(decimal.RequireFromString("10250.50"), nil).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/portfolio/deposit",
		dto.DepositRequest{Amount: amount}, true)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *PortfolioHandlerTestSuite) TestGetPortfolio_Success() {
	suite.expectAccountResolution()
	portfolio := &domain.Portfolio{
		Holdings: []domain.Holding{
			{Symbol: "AAPL", Name: "Apple Inc.", Shares: 10, UnitValue: decimal.RequireFromString("189.30"), LineTotal: decimal.RequireFromString("1893")},
		},
		Cash:       decimal.RequireFromString("8107"),
		GrandTotal: decimal.RequireFromString("10000"),
	}
	suite.mockService.On("GetHoldings", mock.Anything, suite.accountID).Return(portfolio, nil).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/portfolio", nil, true)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.PortfolioResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Holdings, 1)
	suite.Equal("AAPL", resp.Holdings[0].Symbol)
	suite.Equal(int64(10), resp.Holdings[0].Shares)
	suite.True(resp.GrandTotal.Equal(decimal.RequireFromString("10000")))
}

func (suite *PortfolioHandlerTestSuite) TestGetPortfolio_QuoteUnavailable() {
	suite.expectAccountResolution()
	suite.mockService.On("GetHoldings", mock.Anything, suite.accountID).
		Return(nil, apperrors.ErrQuoteUnavailable).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/portfolio", nil, true)

	suite.Equal(http.StatusBadGateway, w.Code)
}

func (suite *PortfolioHandlerTestSuite) TestGetHistory_Success() {
	suite.expectAccountResolution()
	history := []domain.TradeRecord{
		{TradeID: 1, Symbol: "AAPL", ShareDelta: 10, UnitPrice: decimal.RequireFromString("50"), ExecutedAt: time.Now().UTC()},
		{TradeID: 2, Symbol: "AAPL", ShareDelta: -4, UnitPrice: decimal.RequireFromString("60"), ExecutedAt: time.Now().UTC()},
	}
	suite.mockService.On("GetHistory", mock.Anything, suite.accountID).Return(history, nil).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/portfolio/history", nil, true)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.HistoryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Trades, 2)
	suite.Equal(int64(-4), resp.Trades[1].ShareDelta)
}

func (suite *PortfolioHandlerTestSuite) TestListSellable_Success() {
	suite.expectAccountResolution()
	suite.mockService.On("ListSellable", mock.Anything, suite.accountID).
		Return([]string{"AAPL", "MSFT"}, nil).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/portfolio/sellable", nil, true)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.SellableSymbolsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal([]string{"AAPL", "MSFT"}, resp.Symbols)
}

func (suite *PortfolioHandlerTestSuite) TestQuote_Success() {
	suite.mockService.On("Quote", mock.Anything, "NFLX").
		Return(&domain.Quote{Symbol: "NFLX", Name: "Netflix, Inc.", Price: decimal.RequireFromString("640.00")}, nil).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/quote/NFLX", nil, true)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.QuoteResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("NFLX", resp.Symbol)
	suite.True(resp.Price.Equal(decimal.RequireFromString("640")))
}

func (suite *PortfolioHandlerTestSuite) TestQuote_UnknownSymbol() {
	suite.mockService.On("Quote", mock.Anything, "NOPE").
		Return(nil, apperrors.ErrUnknownSymbol).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/quote/NOPE", nil, true)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *PortfolioHandlerTestSuite) TestAccountResolutionFailure() {
	suite.mockService.On("AccountForUser", mock.Anything, suite.userID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/portfolio", nil, true)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "GetHoldings", mock.Anything, mock.Anything)
}

func TestPortfolioHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(PortfolioHandlerTestSuite))
}
