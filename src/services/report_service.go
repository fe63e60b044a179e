package services

import (
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradecoach/backend/src/analysis"
	"github.com/username/tradecoach/backend/src/database"
	"github.com/username/tradecoach/backend/src/logger"
	"github.com/username/tradecoach/backend/src/mapping"
	"github.com/username/tradecoach/backend/src/model"
	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/parsers"
	"github.com/username/tradecoach/backend/src/processors"
)

const (
	ckReport = "res_report_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type reportServiceImpl struct {
	matcher      processors.TradeMatcher
	tickerMapper *mapping.TickerMapper
	priceService PriceService
	reportCache  *cache.Cache
}

func NewReportService(
	matcher processors.TradeMatcher,
	tickerMapper *mapping.TickerMapper,
	priceService PriceService,
	reportCache *cache.Cache,
) ReportService {
	return &reportServiceImpl{
		matcher:      matcher,
		tickerMapper: tickerMapper,
		priceService: priceService,
		reportCache:  reportCache,
	}
}

// ProcessUpload parses the export, replaces the user's stored trades and
// ticker mappings, and invalidates cached reports. Uploads are whole-history
// replacements, never merges.
func (s *reportServiceImpl) ProcessUpload(fileReader io.Reader, userID int64, source string) (*UploadSummary, error) {
	startTime := time.Now()
	logger.L.Info("ProcessUpload START", "userID", userID, "source", source)

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	trades, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if len(trades) == 0 {
		return nil, ErrNoTradesFound
	}

	if err := model.ReplaceTrades(database.DB, userID, trades); err != nil {
		return nil, fmt.Errorf("failed to store trades: %w", err)
	}

	mappings := s.tickerMapper.GenerateMappings(trades)
	if err := model.ReplaceTickerMappings(database.DB, userID, mappings); err != nil {
		return nil, fmt.Errorf("failed to store ticker mappings: %w", err)
	}

	s.InvalidateUserCache(userID)

	matchResult := s.matcher.Match(trades)

	pending := 0
	for _, m := range mappings {
		if m.Status == models.MappingPending {
			pending++
		}
	}

	logger.L.Info("ProcessUpload END",
		"userID", userID,
		"tradeCount", len(trades),
		"pendingTickers", pending,
		"durationMs", time.Since(startTime).Milliseconds())

	return &UploadSummary{
		TradeCount:     len(trades),
		Mappings:       mappings,
		PendingTickers: pending,
		Warnings:       matchResult.Warnings,
	}, nil
}

// GetReport builds (or returns the cached) full analysis report for a user.
// The price-backed sections are included when at least one confirmed ticker
// has history available; price fetch failures degrade to a report without
// those sections rather than failing the request.
func (s *reportServiceImpl) GetReport(userID int64) (*analysis.Report, error) {
	cacheKey := fmt.Sprintf(ckReport, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		if report, ok := cached.(*analysis.Report); ok {
			logger.L.Debug("Report cache hit", "userID", userID)
			return report, nil
		}
	}

	trades, err := model.GetTradesByUserID(database.DB, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	if len(trades) == 0 {
		return nil, ErrNoTradesFound
	}

	report := analysis.Analyze(trades, s.matcher)

	mappings, err := model.GetTickerMappingsByUserID(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to load ticker mappings, skipping price analysis", "userID", userID, "error", err)
	} else if s.priceService != nil {
		priceMap, err := s.priceService.GetPriceHistories(mappings, trades)
		if err != nil {
			logger.L.Warn("Price fetch failed, report will omit price-backed sections", "userID", userID, "error", err)
		} else {
			report.AttachPriceAnalysis(trades, priceMap)
		}
	}

	s.reportCache.Set(cacheKey, &report, cache.DefaultExpiration)
	return &report, nil
}

func (s *reportServiceImpl) GetTickerMappings(userID int64) ([]models.TickerMapping, error) {
	return model.GetTickerMappingsByUserID(database.DB, userID)
}

func (s *reportServiceImpl) UpdateTickerMapping(userID int64, isin, ticker, status string) error {
	if status != models.MappingConfirmed && status != models.MappingPending && status != models.MappingSkipped {
		return fmt.Errorf("invalid mapping status: %s", status)
	}
	if err := model.UpdateTickerMapping(database.DB, userID, isin, ticker, status); err != nil {
		return err
	}
	s.InvalidateUserCache(userID)
	return nil
}

// InvalidateUserCache clears cached reports for a user, forcing a rebuild on
// the next request.
func (s *reportServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckReport, userID))
	logger.L.Info("Invalidated report cache for user", "userID", userID)
}
