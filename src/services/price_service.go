package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradecoach/backend/src/config"
	"github.com/username/tradecoach/backend/src/logger"
	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/utils"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// yahooChartResponse mirrors the chart API payload, closes only.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

const yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// priceServiceImpl fetches daily closes from Yahoo Finance. It keeps a cookie
// jar and crumb for authenticated requests, paces requests with a rate
// limiter, and caches per-ticker histories.
type priceServiceImpl struct {
	httpClient http.Client
	crumb      string
	limiter    *rate.Limiter
	priceCache *cache.Cache
}

// NewPriceService creates the price service and primes the Yahoo session.
func NewPriceService(priceCache *cache.Cache) PriceService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	s := &priceServiceImpl{
		httpClient: http.Client{
			Jar:     jar,
			Timeout: 20 * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(config.Cfg.PriceRequestsPerSec), 1),
		priceCache: priceCache,
	}

	if err := s.initializeYahooSession(); err != nil {
		logger.L.Error("Failed to initialize Yahoo Finance session. Price fetching may fail.", "error", err)
	}

	return s
}

// initializeYahooSession visits a Yahoo Finance page to collect cookies and
// the crumb required by later API calls.
func (s *priceServiceImpl) initializeYahooSession() error {
	logger.L.Info("Initializing Yahoo Finance session to get crumb and cookies...")
	initURL := "https://finance.yahoo.com/quote/VHYL.L"
	req, err := http.NewRequest("GET", initURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make initial request to Yahoo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Yahoo response body: %w", err)
	}

	re := regexp.MustCompile(`"CrumbStore":{"crumb":"(.*?)"}`)
	matches := re.FindStringSubmatch(string(body))
	if len(matches) < 2 {
		return fmt.Errorf("could not find crumb in Yahoo Finance response. The page structure may have changed")
	}

	s.crumb = matches[1]
	logger.L.Info("Successfully obtained Yahoo Finance crumb.")
	return nil
}

// GetPriceHistories fetches daily closes for every confirmed mapping, keyed
// by ISIN. The date range runs from the earliest trade minus the configured
// lookback to today. Tickers that fail are skipped, not fatal.
func (s *priceServiceImpl) GetPriceHistories(mappings []models.TickerMapping, trades []models.Trade) (map[string]models.InstrumentPriceHistory, error) {
	result := make(map[string]models.InstrumentPriceHistory)

	var active []models.TickerMapping
	for _, m := range mappings {
		if m.Status == models.MappingConfirmed && m.Ticker != "" {
			active = append(active, m)
		}
	}
	if len(active) == 0 || len(trades) == 0 {
		return result, nil
	}

	earliest := trades[0].TradeDate
	for _, t := range trades {
		if t.TradeDate.Before(earliest) {
			earliest = t.TradeDate
		}
	}
	startDate := earliest.AddDate(0, 0, -config.Cfg.PriceLookbackDays)
	endDate := time.Now()

	if s.crumb == "" {
		logger.L.Warn("Yahoo crumb is missing, attempting to re-initialize session.")
		if err := s.initializeYahooSession(); err != nil {
			return result, fmt.Errorf("%w: %v", ErrPriceFetchFailed, err)
		}
	}

	for _, m := range active {
		prices, err := s.fetchDailyCloses(m.Ticker, startDate, endDate)
		if err != nil {
			logger.L.Warn("Skipping ticker, no price data available", "ticker", m.Ticker, "isin", m.ISIN, "error", err)
			continue
		}
		if len(prices) == 0 {
			continue
		}
		result[m.ISIN] = models.InstrumentPriceHistory{
			Ticker: m.Ticker,
			ISIN:   m.ISIN,
			Prices: prices,
		}
	}

	return result, nil
}

// fetchDailyCloses returns ascending daily closes for one ticker, from the
// per-ticker cache when possible.
func (s *priceServiceImpl) fetchDailyCloses(ticker string, startDate, endDate time.Time) ([]models.PricePoint, error) {
	cacheKey := fmt.Sprintf("prices_%s_%s", ticker, startDate.Format(utils.DefaultDateFormat))
	if cached, found := s.priceCache.Get(cacheKey); found {
		if prices, ok := cached.([]models.PricePoint); ok {
			return prices, nil
		}
	}

	if err := s.limiter.Wait(context.Background()); err != nil {
		return nil, err
	}

	chartURL := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&crumb=%s",
		url.PathEscape(ticker), startDate.Unix(), endDate.Unix(), url.QueryEscape(s.crumb))

	req, err := http.NewRequest("GET", chartURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request for %s returned status %d", ticker, resp.StatusCode)
	}

	var chartResp yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartResp); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", ticker, err)
	}
	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", ticker, chartResp.Chart.Error.Description)
	}
	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data for %s", ticker)
	}

	data := chartResp.Chart.Result[0]
	var closes []*float64
	if len(data.Indicators.Quote) > 0 {
		closes = data.Indicators.Quote[0].Close
	}
	var adjCloses []*float64
	if len(data.Indicators.Adjclose) > 0 {
		adjCloses = data.Indicators.Adjclose[0].Adjclose
	}

	prices := make([]models.PricePoint, 0, len(data.Timestamp))
	for i, ts := range data.Timestamp {
		var close *float64
		if i < len(closes) && closes[i] != nil {
			close = closes[i]
		} else if i < len(adjCloses) && adjCloses[i] != nil {
			close = adjCloses[i]
		}
		if close == nil {
			continue
		}
		prices = append(prices, models.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Format(utils.DefaultDateFormat),
			Close: *close,
		})
	}

	s.priceCache.Set(cacheKey, prices, config.Cfg.PriceCacheExpiry)
	return prices, nil
}
