package nordnet

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/username/tradecoach/backend/src/logger"
	"github.com/username/tradecoach/backend/src/models"
)

// Column indices (0-based) for the Nordnet tab-separated export.
// Positional because the header repeats "Valuta" five times.
const (
	colID              = 0
	colTradeDate       = 2  // Handelsdag
	colType            = 5  // Transaksjonstype
	colInstrument      = 6  // Verdipapir
	colISIN            = 7
	colQuantity        = 8  // Antall
	colPrice           = 9  // Kurs
	colTotalFees       = 11 // Totale Avgifter
	colFeeCurrency     = 12
	colAmount          = 13 // Beløp
	colAmountCurrency  = 14
	colPurchaseValue   = 15 // Kjøpsverdi
	colPurchaseCcy     = 16
	colResult          = 17 // Resultat
	colResultCcy       = 18
	colExchangeRate    = 21 // Vekslingskurs (NOK portfolios)
	colCurrencyRate    = 28 // Valutakurs (foreign currency portfolios)
	minColumns         = 22
)

type NordnetParser struct{}

func NewParser() *NordnetParser {
	return &NordnetParser{}
}

// Parse reads a Nordnet transaction export. The file is UTF-16LE with a BOM
// by default; UTF-8 exports are accepted too. Only KJØPT and SALG rows become
// trades; dividends, deposits and the rest are skipped.
func (p *NordnetParser) Parse(file io.Reader) ([]models.Trade, error) {
	text, err := decodeExport(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Nordnet export: %w", err)
	}

	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, fmt.Errorf("export file appears to be empty")
	}
	if !strings.Contains(lines[0], "Transaksjonstype") {
		return nil, fmt.Errorf("invalid file format: expected a Nordnet transaction export with Norwegian headers")
	}

	var trades []models.Trade
	for i, line := range lines[1:] {
		cols := strings.Split(line, "\t")
		if len(cols) < minColumns {
			continue
		}

		typeRaw := strings.TrimSpace(cols[colType])
		var side string
		switch typeRaw {
		case "KJØPT":
			side = models.SideBuy
		case "SALG":
			side = models.SideSell
		default:
			continue
		}

		tradeDate, err := time.Parse("2006-01-02", strings.TrimSpace(cols[colTradeDate]))
		if err != nil {
			logger.L.Warn("Skipping row with invalid trade date", "row", i+2, "value", cols[colTradeDate])
			continue
		}

		currencyCol := colPurchaseCcy
		if side == models.SideSell {
			currencyCol = colResultCcy
		}
		currency := strings.TrimSpace(cols[currencyCol])
		if currency == "" {
			currency = "NOK"
		}

		feeCurrency := strings.TrimSpace(cols[colFeeCurrency])
		if feeCurrency == "" {
			feeCurrency = "NOK"
		}
		amountCurrency := strings.TrimSpace(cols[colAmountCurrency])
		if amountCurrency == "" {
			amountCurrency = "NOK"
		}
		rawAmount := parseNorwegianNumber(cols[colAmount])

		// Vekslingskurs is filled for NOK portfolios; foreign currency
		// portfolios carry Valutakurs further right instead.
		exchangeRate := parseNorwegianNumber(cols[colExchangeRate])
		if exchangeRate <= 0 && len(cols) > colCurrencyRate {
			exchangeRate = parseNorwegianNumber(cols[colCurrencyRate])
		}

		amountNOK := rawAmount
		if amountCurrency != "NOK" && exchangeRate > 0 {
			amountNOK = rawAmount * exchangeRate
		}

		trades = append(trades, models.Trade{
			TradeID:        strings.TrimSpace(cols[colID]),
			TradeDate:      tradeDate,
			Side:           side,
			Instrument:     strings.TrimSpace(cols[colInstrument]),
			ISIN:           strings.TrimSpace(cols[colISIN]),
			Quantity:       parseNorwegianNumber(cols[colQuantity]),
			Price:          parseNorwegianNumber(cols[colPrice]),
			TotalFees:      parseNorwegianNumber(cols[colTotalFees]),
			FeeCurrency:    feeCurrency,
			Amount:         rawAmount,
			AmountCurrency: amountCurrency,
			AmountNOK:      amountNOK,
			Currency:       currency,
			ExchangeRate:   exchangeRate,
		})
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].TradeDate.Before(trades[j].TradeDate)
	})

	return trades, nil
}

// decodeExport sniffs the BOM and decodes UTF-16LE exports to UTF-8.
func decodeExport(file io.Reader) (string, error) {
	reader := bufio.NewReader(file)
	bom, err := reader.Peek(2)
	if err != nil && err != io.EOF {
		return "", err
	}

	var src io.Reader = reader
	if len(bom) == 2 && bom[0] == 0xff && bom[1] == 0xfe {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		src = transform.NewReader(reader, decoder)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	text := string(data)
	text = strings.TrimPrefix(text, "\ufeff")
	return text, nil
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseNorwegianNumber handles comma decimal separators and blank cells.
func parseNorwegianNumber(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, " ", "")
	value = strings.Replace(value, ",", ".", 1)
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}
