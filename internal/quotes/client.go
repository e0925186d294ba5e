// Package quotes adapts external quote providers to the QuoteProvider port.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/finledge/stockfolio_backend/internal/apperrors"
	"github.com/finledge/stockfolio_backend/internal/core/domain"
	portssvc "github.com/finledge/stockfolio_backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Client looks up quotes from an HTTP JSON API:
// GET {baseURL}/quote?symbol=X -> {"symbol": ..., "name": ..., "price": ...}.
//
// A 404 means the ticker does not exist (apperrors.ErrUnknownSymbol); any
// transport failure, timeout or non-200 status means the provider is
// unavailable (apperrors.ErrQuoteUnavailable). The distinction matters to
// callers: a position can outlive the provider's ability to price it.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// Ensure Client implements the QuoteProvider port
var _ portssvc.QuoteProvider = (*Client)(nil)

// NewClient creates a quote client for the given API base URL. The apiKey
// may be empty for providers that do not require one.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// quoteResponse is the provider's wire format.
type quoteResponse struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Lookup resolves a symbol to a live quote.
func (c *Client) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol must not be empty", apperrors.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("symbol", symbol)
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	addr := c.baseURL + "/quote?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building quote request: %v", apperrors.ErrQuoteUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownSymbol, symbol)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: provider returned %s", apperrors.ErrQuoteUnavailable, resp.Status)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding provider response: %v", apperrors.ErrQuoteUnavailable, err)
	}
	if !body.Price.IsPositive() {
		return nil, fmt.Errorf("%w: provider returned non-positive price %s for %s", apperrors.ErrQuoteUnavailable, body.Price.String(), symbol)
	}

	quote := &domain.Quote{
		Symbol: strings.ToUpper(body.Symbol),
		Name:   body.Name,
		Price:  body.Price,
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	return quote, nil
}
