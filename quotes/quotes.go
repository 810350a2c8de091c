// Package quotes looks up live market prices
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

	"github.com/shopspring/decimal"
)

// ErrNotFound reports an unknown ticker symbol.
var ErrNotFound = errors.New("symbol not found")

// Quote is a point-in-time price and company name for a symbol.
type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}

// Provider maps a ticker symbol to its current quote.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}

const defaultBaseURL = "https://www.alphavantage.co"

// AlphaVantage fetches quotes from the Alpha Vantage API.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAlphaVantage is constructor. Requests fail after timeout.
func NewAlphaVantage(apiKey string, timeout time.Duration) *AlphaVantage {
	return &AlphaVantage{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
}

type symbolSearchResponse struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
	} `json:"bestMatches"`
}

// Lookup resolves symbol via GLOBAL_QUOTE, then fills the company name
// from SYMBOL_SEARCH. A missing name is not an error; the symbol stands in.
func (a *AlphaVantage) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	var gq globalQuoteResponse
	if err := a.get(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}}, &gq); err != nil {
		return nil, err
	}
	if gq.GlobalQuote.Price == "" {
		return nil, ErrNotFound
	}

	price, err := decimal.NewFromString(gq.GlobalQuote.Price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", gq.GlobalQuote.Price, err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("non-positive price %s for %s", price, symbol)
	}

	q := &Quote{Symbol: gq.GlobalQuote.Symbol, Price: price}
	if q.Symbol == "" {
		q.Symbol = strings.ToUpper(symbol)
	}
	q.Name = q.Symbol

	var sr symbolSearchResponse
	if err := a.get(ctx, url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {q.Symbol}}, &sr); err == nil {
		for _, m := range sr.BestMatches {
			if strings.EqualFold(m.Symbol, q.Symbol) {
				q.Name = m.Name
				break
			}
		}
	}
	return q, nil
}

func (a *AlphaVantage) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote provider returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse quote response: %w", err)
	}
	return nil
}
