package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/siddhantkochhar/ballu-go/internal/apperrors"
	"github.com/siddhantkochhar/ballu-go/internal/intent"
)

const stockUpstream = "yahoo-finance"

// StockQuote is the normalized stock fetch result.
type StockQuote struct {
	Symbol        string  `json:"symbol"`
	Company       string  `json:"company"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// Summary renders the quote as plain text for the composer fallback.
func (s *StockQuote) Summary() string {
	sign := "+"
	if s.Change < 0 {
		sign = ""
	}
	return fmt.Sprintf("%s (%s)\nCurrent: $%.2f\nChange: %s%.2f (%s%.2f%%)\nPrevious Close: $%.2f",
		s.Company, s.Symbol, s.Price, sign, s.Change, sign, s.ChangePercent, s.PreviousClose)
}

// StockFetcher queries the Yahoo Finance quote endpoint.
type StockFetcher struct {
	client  *http.Client
	baseURL string
}

// NewStockFetcher creates a stock fetcher. The quote endpoint needs no
// API key.
func NewStockFetcher(baseURL string, timeout time.Duration) *StockFetcher {
	return &StockFetcher{
		client:  newHTTPClient(timeout),
		baseURL: baseURL,
	}
}

// Name implements Fetcher.
func (f *StockFetcher) Name() string { return "get_stock_price" }

// RequiredParams implements Fetcher.
func (f *StockFetcher) RequiredParams() []string { return []string{"symbol"} }

// yahooQuoteResponse mirrors the subset of the quote payload in use.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			LongName                   string  `json:"longName"`
			ShortName                  string  `json:"shortName"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// Fetch implements Fetcher with one call to /v7/finance/quote.
func (f *StockFetcher) Fetch(ctx context.Context, params map[string]string) (*Result, *Error) {
	symbol := strings.ToUpper(cleanParam(params["symbol"]))
	if symbol == "" {
		return nil, MissingParamError(f.Name(), "symbol")
	}

	q := url.Values{}
	q.Set("symbols", symbol)
	endpoint := f.baseURL + "/v7/finance/quote?" + q.Encode()

	resp, ferr := getJSON(ctx, f.client, stockUpstream, endpoint)
	if ferr != nil {
		return nil, ferr
	}
	defer func() { _ = resp.Body.Close() }()

	var payload yahooQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, malformedError(stockUpstream, err)
	}
	if len(payload.QuoteResponse.Result) == 0 {
		// Unknown symbols come back as an empty result set, not a 404.
		return nil, newError(apperrors.ErrInvalidInput, stockUpstream,
			fmt.Sprintf("no quote data for symbol %q", symbol),
			apperrors.ErrInvalidInput)
	}

	quote := payload.QuoteResponse.Result[0]
	if quote.RegularMarketPrice == 0 {
		return nil, malformedError(stockUpstream,
			fmt.Errorf("quote for %q has no market price", symbol))
	}

	company := quote.LongName
	if company == "" {
		company = quote.ShortName
	}
	if company == "" {
		company = symbol
	}

	change := quote.RegularMarketPrice - quote.RegularMarketPreviousClose
	changePercent := 0.0
	if quote.RegularMarketPreviousClose != 0 {
		changePercent = change / quote.RegularMarketPreviousClose * 100
	}

	return &Result{
		Kind: intent.Stock,
		Stock: &StockQuote{
			Symbol:        quote.Symbol,
			Company:       company,
			Price:         quote.RegularMarketPrice,
			PreviousClose: quote.RegularMarketPreviousClose,
			Change:        change,
			ChangePercent: changePercent,
		},
	}, nil
}
