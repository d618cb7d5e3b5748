// Package yahoo implements the MarketData and NewsSearch capabilities on the
// public Yahoo Finance JSON endpoints. Quotes are assembled from the
// quoteSummary and chart endpoints; news comes from the search endpoint.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hupe1980/equityscope/core"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	defaultUserAgent = "Mozilla/5.0 (compatible; equityscope/1.0)"

	quoteModules = "price,summaryDetail,financialData,defaultKeyStatistics,assetProfile"

	// Trading days per year, used to annualize daily return volatility.
	tradingDays = 252
)

// Options configure the Yahoo client.
type Options struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// Client talks to the Yahoo Finance JSON API. It implements both
// core.MarketData and core.NewsSearch.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a Yahoo client with sane defaults.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    defaultBaseURL,
		UserAgent:  defaultUserAgent,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{baseURL: opts.BaseURL, userAgent: opts.UserAgent, http: opts.HTTPClient}
}

// value is Yahoo's {"raw": n, "fmt": "…"} number wrapper. Missing fields
// decode to a zero Raw.
type value struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				Symbol             string `json:"symbol"`
				LongName           string `json:"longName"`
				ShortName          string `json:"shortName"`
				RegularMarketPrice value  `json:"regularMarketPrice"`
				MarketCap          value  `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE       value `json:"trailingPE"`
				ForwardPE        value `json:"forwardPE"`
				Beta             value `json:"beta"`
				FiftyTwoWeekHigh value `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  value `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
			FinancialData struct {
				DebtToEquity      value  `json:"debtToEquity"`
				CurrentRatio      value  `json:"currentRatio"`
				ReturnOnEquity    value  `json:"returnOnEquity"`
				RevenueGrowth     value  `json:"revenueGrowth"`
				EarningsGrowth    value  `json:"earningsGrowth"`
				TargetMeanPrice   value  `json:"targetMeanPrice"`
				RecommendationKey string `json:"recommendationKey"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				TrailingEPS value `json:"trailingEps"`
				PEGRatio    value `json:"pegRatio"`
				PriceToBook value `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Link                string `json:"link"`
		Publisher           string `json:"publisher"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// Quote fetches the full market snapshot for one symbol. An unknown symbol
// is reported via Quote.Err; the error return is reserved for transport
// failures.
func (c *Client) Quote(ctx context.Context, symbol string) (core.Quote, error) {
	var summary quoteSummaryResponse
	err := c.getJSON(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), url.Values{
		"modules": {quoteModules},
	}, &summary)
	if err != nil {
		return core.Quote{}, err
	}
	if e := summary.QuoteSummary.Error; e != nil {
		return core.Quote{Symbol: symbol, Err: e.Description}, nil
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return core.Quote{Symbol: symbol, Err: "no data returned for symbol"}, nil
	}

	r := summary.QuoteSummary.Result[0]
	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}

	quote := core.Quote{
		Symbol:      symbol,
		CompanyName: name,
		Sector:      r.AssetProfile.Sector,
		Industry:    r.AssetProfile.Industry,

		CurrentPrice: r.Price.RegularMarketPrice.Raw,
		MarketCap:    r.Price.MarketCap.Raw,
		EPS:          r.DefaultKeyStatistics.TrailingEPS.Raw,

		PERatio:     r.SummaryDetail.TrailingPE.Raw,
		ForwardPE:   r.SummaryDetail.ForwardPE.Raw,
		PEGRatio:    r.DefaultKeyStatistics.PEGRatio.Raw,
		PriceToBook: r.DefaultKeyStatistics.PriceToBook.Raw,

		// Yahoo reports debt/equity in percent.
		DebtToEquity: r.FinancialData.DebtToEquity.Raw / 100,
		CurrentRatio: r.FinancialData.CurrentRatio.Raw,
		ROE:          r.FinancialData.ReturnOnEquity.Raw,

		RevenueGrowth:  r.FinancialData.RevenueGrowth.Raw,
		EarningsGrowth: r.FinancialData.EarningsGrowth.Raw,

		Beta: r.SummaryDetail.Beta.Raw,

		FiftyTwoWeekHigh:      r.SummaryDetail.FiftyTwoWeekHigh.Raw,
		FiftyTwoWeekLow:       r.SummaryDetail.FiftyTwoWeekLow.Raw,
		TargetPrice:           r.FinancialData.TargetMeanPrice.Raw,
		AnalystRecommendation: r.FinancialData.RecommendationKey,
	}

	closes, err := c.dailyCloses(ctx, symbol)
	if err == nil && len(closes) > 1 {
		quote.PriceChanges = priceChanges(closes)
		quote.Volatility = annualizedVolatility(closes)
	}

	return quote, nil
}

// Search fetches recent news for a free-text query. An empty result set is
// an empty slice, never an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]core.Article, error) {
	var resp searchResponse
	err := c.getJSON(ctx, "/v1/finance/search", url.Values{
		"q":           {query},
		"newsCount":   {strconv.Itoa(maxResults)},
		"quotesCount": {"0"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	articles := make([]core.Article, 0, len(resp.News))
	for _, n := range resp.News {
		if len(articles) == maxResults {
			break
		}
		articles = append(articles, core.Article{
			Title:         n.Title,
			URL:           n.Link,
			Snippet:       n.Publisher,
			PublishedDate: time.Unix(n.ProviderPublishTime, 0).UTC().Format("2006-01-02"),
		})
	}
	return articles, nil
}

// dailyCloses returns one year of daily closing prices, oldest first.
func (c *Client) dailyCloses(ctx context.Context, symbol string) ([]float64, error) {
	var resp chartResponse
	err := c.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), url.Values{
		"range":    {"1y"},
		"interval": {"1d"},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("chart error for %s: %s", symbol, e.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	raw := resp.Chart.Result[0].Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		// Holidays and halts come back as nulls, decoded to zero.
		if v > 0 {
			closes = append(closes, v)
		}
	}
	return closes, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("yahoo response read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("yahoo request failed: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo response decode failed: %w", err)
	}
	return nil
}

// priceChanges derives percentage moves over standard windows from daily
// closes, oldest first.
func priceChanges(closes []float64) core.PriceChanges {
	last := closes[len(closes)-1]
	pct := func(daysBack int) float64 {
		idx := len(closes) - 1 - daysBack
		if idx < 0 {
			idx = 0
		}
		base := closes[idx]
		if base == 0 {
			return 0
		}
		return (last - base) / base * 100
	}
	return core.PriceChanges{
		OneDay:   pct(1),
		OneWeek:  pct(5),
		OneMonth: pct(21),
		OneYear:  pct(len(closes) - 1),
	}
}

// annualizedVolatility is the standard deviation of daily returns scaled to
// a yearly horizon, in percent.
func annualizedVolatility(closes []float64) float64 {
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingDays) * 100
}
