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
	"github.com/finledge/stockfolio_backend/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Test Suite ---
type AuthHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockUserService
	jwtSecret   string
}

func (suite *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockService = new(MockUserService)
	handler := handlers.NewAuthHandler(suite.mockService, &config.Config{
		JWTSecret:         suite.jwtSecret,
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "stockfolio-test",
	})

	auth := suite.router.Group("/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
}

func (suite *AuthHandlerTestSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(body)
	suite.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Register Tests ---

func (suite *AuthHandlerTestSuite) TestRegister_Success() {
	userID := uuid.NewString()
	suite.mockService.On("Register", mock.Anything, "newuser", "password123").
		Return(&domain.User{UserID: userID, Username: "newuser"}, nil).Once()

	w := suite.postJSON("/auth/register", dto.RegisterRequest{
		Username:     "newuser",
		Password:     "password123",
		Confirmation: "password123",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.LoginResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(userID, resp.UserID)
	suite.Equal("newuser", resp.Username)
	suite.NotEmpty(resp.Token)

	// The token is usable against the secret the server signs with.
	token, err := jwt.ParseWithClaims(resp.Token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(suite.jwtSecret), nil
	})
	suite.Require().NoError(err)
	claims := token.Claims.(*jwt.RegisteredClaims)
	suite.Equal(userID, claims.Subject)
}

func (suite *AuthHandlerTestSuite) TestRegister_PasswordMismatch() {
	w := suite.postJSON("/auth/register", dto.RegisterRequest{
		Username:     "newuser",
		Password:     "password123",
		Confirmation: "different",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Register", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthHandlerTestSuite) TestRegister_ShortPassword() {
	w := suite.postJSON("/auth/register", dto.RegisterRequest{
		Username:     "newuser",
		Password:     "short",
		Confirmation: "short",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Register", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthHandlerTestSuite) TestRegister_DuplicateUsername() {
	suite.mockService.On("Register", mock.Anything, "taken", "password123").
		Return(nil, apperrors.ErrDuplicate).Once()

	w := suite.postJSON("/auth/register", dto.RegisterRequest{
		Username:     "taken",
		Password:     "password123",
		Confirmation: "password123",
	})

	suite.Equal(http.StatusConflict, w.Code)
}

// --- Login Tests ---

func (suite *AuthHandlerTestSuite) TestLogin_Success() {
	userID := uuid.NewString()
	suite.mockService.On("Authenticate", mock.Anything, "testuser", "password123").
		Return(&domain.User{UserID: userID, Username: "testuser"}, nil).Once()

	w := suite.postJSON("/auth/login", dto.LoginRequest{Username: "testuser", Password: "password123"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.LoginResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(userID, resp.UserID)
	suite.NotEmpty(resp.Token)
}

func (suite *AuthHandlerTestSuite) TestLogin_BadCredentials() {
	suite.mockService.On("Authenticate", mock.Anything, "testuser", "wrong").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.postJSON("/auth/login", dto.LoginRequest{Username: "testuser", Password: "wrong"})

	suite.Equal(http.StatusUnauthorized, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	// Unknown user and wrong password read the same from outside.
	suite.Equal("invalid username or password", resp.Error)
}

func (suite *AuthHandlerTestSuite) TestLogin_MissingFields() {
	w := suite.postJSON("/auth/login", map[string]any{"username": "testuser"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Authenticate", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
