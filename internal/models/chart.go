package models

// SentimentValue is the sentiment attached to an aligned day.
type SentimentValue struct {
	Value          int    `json:"value"`
	Classification string `json:"value_classification"`
}

// AlignedRecord is a price point joined with the sentiment reading of the
// same day. Time is the day key in milliseconds.
type AlignedRecord struct {
	Time      int64          `json:"time"`
	Price     float64        `json:"price"`
	Sentiment SentimentValue `json:"fear_greed"`
}

type CorrelationResult struct {
	Pearson float64 `json:"pearson"`
	PValue  float64 `json:"p_value"`
}

// ChartData is the /chart_data response body. Pearson and PValue are nil
// when the aligned set is too small or flat to correlate.
type ChartData struct {
	PValue  *float64        `json:"p_value"`
	Pearson *float64        `json:"pearson"`
	Data    []AlignedRecord `json:"data"`
}
