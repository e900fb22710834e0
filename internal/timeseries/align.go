package timeseries

import (
	"time"

	"github.com/kjannette/fng-correlation-backend/internal/models"
)

// Align inner-joins prices and sentiment on day key. sentiment must already
// be in chronological order: when two readings share a day the later one
// wins. Output follows the order of prices, one record per price point whose
// day has a reading.
func Align(prices []models.PricePoint, sentiment []models.SentimentPoint, loc *time.Location) []models.AlignedRecord {
	out := make([]models.AlignedRecord, 0, len(prices))
	if len(prices) == 0 || len(sentiment) == 0 {
		return out
	}

	byDay := make(map[int64]models.SentimentValue, len(sentiment))
	for _, s := range sentiment {
		byDay[StartOfDay(s.Timestamp, loc)] = models.SentimentValue{
			Value:          s.Value,
			Classification: s.Classification,
		}
	}

	for _, p := range prices {
		day := DayKeyFromMillis(p.TimestampMs, loc)
		sv, ok := byDay[day]
		if !ok {
			continue
		}
		out = append(out, models.AlignedRecord{
			Time:      day * 1000,
			Price:     p.Price,
			Sentiment: sv,
		})
	}
	return out
}

// Pairs splits aligned records into parallel price and sentiment slices.
func Pairs(records []models.AlignedRecord) (prices, values []float64) {
	prices = make([]float64, len(records))
	values = make([]float64, len(records))
	for i, r := range records {
		prices[i] = r.Price
		values[i] = float64(r.Sentiment.Value)
	}
	return prices, values
}
