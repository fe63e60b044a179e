package parsers

import (
	"io"

	"github.com/username/tradecoach/backend/src/models"
)

// Parser turns a broker transaction export into normalized trades.
type Parser interface {
	Parse(file io.Reader) ([]models.Trade, error)
}
