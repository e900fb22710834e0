package models

// SentimentPoint is one Fear & Greed index reading. Timestamp is in seconds.
type SentimentPoint struct {
	Timestamp      int64  `json:"timestamp"`
	Value          int    `json:"value"`
	Classification string `json:"value_classification"`
}

// Chronological returns a copy of points in reverse order. The Fear & Greed
// API delivers newest first, so this yields oldest first.
func Chronological(points []SentimentPoint) []SentimentPoint {
	out := make([]SentimentPoint, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}
