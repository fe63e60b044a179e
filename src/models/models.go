package models

import "time"

// Trade is a single buy or sell from a Nordnet transaction export,
// normalized by the parser. It is created once at ingestion and never mutated.
type Trade struct {
	ID             int64     `json:"id,omitempty"` // database primary key
	TradeID        string    `json:"trade_id"`     // broker transaction id (or generated)
	TradeDate      time.Time `json:"trade_date"`
	Side           string    `json:"side"` // "buy" or "sell"
	Instrument     string    `json:"instrument"`
	ISIN           string    `json:"isin"`
	Quantity       float64   `json:"quantity"`
	Price          float64   `json:"price"`      // per share, in trade currency
	TotalFees      float64   `json:"total_fees"` // in FeeCurrency
	FeeCurrency    string    `json:"fee_currency"`
	Amount         float64   `json:"amount"` // Beløp, negative for buys
	AmountCurrency string    `json:"amount_currency"`
	AmountNOK      float64   `json:"amount_nok"`    // Amount converted to NOK
	Currency       string    `json:"currency"`      // trade currency
	ExchangeRate   float64   `json:"exchange_rate"` // NOK per unit of trade currency, 0 if unknown
}

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// RoundTrip is one matched buy→sell of a quantity of one instrument,
// produced by the trade matcher. A single sell may be split across several
// round trips (one per consumed buy lot) and vice versa.
type RoundTrip struct {
	Instrument    string    `json:"instrument"`
	ISIN          string    `json:"isin"`
	BuyDate       time.Time `json:"buy_date"`
	SellDate      time.Time `json:"sell_date"`
	Quantity      float64   `json:"quantity"`
	BuyPrice      float64   `json:"buy_price"`  // per share, trade currency
	SellPrice     float64   `json:"sell_price"` // per share, trade currency
	BuyAmountNOK  float64   `json:"buy_amount_nok"`
	SellAmountNOK float64   `json:"sell_amount_nok"`
	ProfitNOK     float64   `json:"profit_nok"`
	ProfitPercent float64   `json:"profit_percent"` // 100 * ProfitNOK / BuyAmountNOK
	HoldDays      int       `json:"hold_days"`
	Currency      string    `json:"currency"`
}

// OpenPosition is the unsold remainder of an instrument after matching.
type OpenPosition struct {
	Instrument   string    `json:"instrument"`
	ISIN         string    `json:"isin"`
	Quantity     float64   `json:"quantity"`
	AvgBuyPrice  float64   `json:"avg_buy_price"` // quantity-weighted
	TotalCostNOK float64   `json:"total_cost_nok"`
	Currency     string    `json:"currency"`
	FirstBuyDate time.Time `json:"first_buy_date"`
	LastBuyDate  time.Time `json:"last_buy_date"`
}

// TickerMapping links an ISIN to a market data symbol. Produced by the
// mapping package; Status tracks whether the mapping is usable.
type TickerMapping struct {
	Instrument      string `json:"instrument"`
	ISIN            string `json:"isin"`
	Ticker          string `json:"ticker"`
	Status          string `json:"status"` // "confirmed", "pending" or "skipped"
	IsNorwegianFund bool   `json:"is_norwegian_fund"`
}

const (
	MappingConfirmed = "confirmed"
	MappingPending   = "pending"
	MappingSkipped   = "skipped"
)

// PricePoint is one daily close from the market data provider.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// InstrumentPriceHistory holds daily closes for one instrument,
// ascending by date.
type InstrumentPriceHistory struct {
	Ticker string       `json:"ticker"`
	ISIN   string       `json:"isin"`
	Prices []PricePoint `json:"prices"`
}
