package models

// PricePoint is one [timestampMs, price] pair of a CoinGecko market chart.
type PricePoint struct {
	TimestampMs int64   `json:"timestampMs"`
	Price       float64 `json:"price"`
}

// Coin is a CoinGecko catalog entry.
type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
