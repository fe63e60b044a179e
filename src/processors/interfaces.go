package processors

import (
	"github.com/username/tradecoach/backend/src/models"
)

// MatchResult holds everything produced by one matching pass.
type MatchResult struct {
	RoundTrips    []models.RoundTrip
	OpenPositions []models.OpenPosition
	// Warnings are recoverable data-quality findings (e.g. a sell with no
	// remaining cost basis). They never abort a run.
	Warnings []string
}

// TradeMatcher defines the interface for pairing buys with sells.
type TradeMatcher interface {
	Match(trades []models.Trade) MatchResult
}
