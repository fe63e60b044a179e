package services

import (
	"errors"
	"io"

	"github.com/username/tradecoach/backend/src/analysis"
	"github.com/username/tradecoach/backend/src/models"
)

var (
	ErrParsingFailed    = errors.New("parsing failed")
	ErrNoTradesFound    = errors.New("no trades found")
	ErrCoachingFailed   = errors.New("coaching request failed")
	ErrPriceFetchFailed = errors.New("price fetch failed")
)

// UploadSummary is what the upload endpoint returns to the frontend.
type UploadSummary struct {
	TradeCount     int                    `json:"trade_count"`
	Mappings       []models.TickerMapping `json:"mappings"`
	PendingTickers int                    `json:"pending_tickers"`
	Warnings       []string               `json:"warnings,omitempty"`
}

// ReportService owns the upload → parse → persist → analyze pipeline.
type ReportService interface {
	ProcessUpload(fileReader io.Reader, userID int64, source string) (*UploadSummary, error)
	GetReport(userID int64) (*analysis.Report, error)
	GetTickerMappings(userID int64) ([]models.TickerMapping, error)
	UpdateTickerMapping(userID int64, isin, ticker, status string) error
	InvalidateUserCache(userID int64)
}

// PriceService fetches daily closing prices for mapped instruments.
type PriceService interface {
	GetPriceHistories(mappings []models.TickerMapping, trades []models.Trade) (map[string]models.InstrumentPriceHistory, error)
}

// CoachingService turns anonymized statistics into a narrative and rules via
// the external LLM collaborator.
type CoachingService interface {
	GetCoaching(stats analysis.AnonymizedStats) (*CoachingResponse, error)
}

// CoachingRule is one concrete trading rule from the coach.
type CoachingRule struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Evidence    string `json:"evidence"`
}

// CoachingResponse is the parsed reply from the coaching collaborator.
type CoachingResponse struct {
	Narrative string         `json:"narrative"`
	Rules     []CoachingRule `json:"rules"`
}
