package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/fng-correlation-backend/internal/external"
	"github.com/kjannette/fng-correlation-backend/internal/models"
	"github.com/kjannette/fng-correlation-backend/internal/timeseries"
)

type fakePrices struct {
	points []models.PricePoint
	err    error
	calls  atomic.Int32
}

func (f *fakePrices) MarketChart(ctx context.Context, coinID string, from, to int64) ([]models.PricePoint, error) {
	f.calls.Add(1)
	return f.points, f.err
}

type fakeSentiment struct {
	points []models.SentimentPoint
	err    error
	block  bool
}

func (f *fakeSentiment) History(ctx context.Context) (*external.History, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &external.History{Data: f.points}, nil
}

const day = int64(86400)

// 2024-01-15 00:00:00 UTC
const d1 = int64(1705276800)

func TestChartData_SinglePointIsDegenerate(t *testing.T) {
	prices := &fakePrices{points: []models.PricePoint{{TimestampMs: 1700000000000, Price: 100.0}}}
	sentiment := &fakeSentiment{points: []models.SentimentPoint{
		{Timestamp: timeseries.StartOfDay(1700000000, time.UTC), Value: 50, Classification: "Neutral"},
	}}
	svc := NewChartService(prices, sentiment, time.UTC)

	out, err := svc.ChartData(context.Background(), "bitcoin", 1, 2)
	require.NoError(t, err)

	require.Len(t, out.Data, 1)
	assert.Equal(t, 100.0, out.Data[0].Price)
	assert.Equal(t, 50, out.Data[0].Sentiment.Value)
	assert.Nil(t, out.Pearson)
	assert.Nil(t, out.PValue)
}

func TestChartData_ReversesSentimentAndCorrelates(t *testing.T) {
	prices := &fakePrices{points: []models.PricePoint{
		{TimestampMs: d1 * 1000, Price: 100},
		{TimestampMs: (d1 + day) * 1000, Price: 110},
		{TimestampMs: (d1 + 2*day) * 1000, Price: 120},
		{TimestampMs: (d1 + 3*day) * 1000, Price: 125},
	}}
	// newest first, as delivered upstream; the duplicate reading for d1
	// that comes later in chronological order must win.
	sentiment := &fakeSentiment{points: []models.SentimentPoint{
		{Timestamp: d1 + 2*day, Value: 60, Classification: "Greed"},
		{Timestamp: d1 + day, Value: 50, Classification: "Neutral"},
		{Timestamp: d1 + 600, Value: 40, Classification: "Fear"},
		{Timestamp: d1, Value: 10, Classification: "Extreme Fear"},
	}}
	svc := NewChartService(prices, sentiment, nil)

	out, err := svc.ChartData(context.Background(), "bitcoin", 1, 2)
	require.NoError(t, err)

	require.Len(t, out.Data, 3)
	assert.Equal(t, 40, out.Data[0].Sentiment.Value)
	assert.Equal(t, d1*1000, out.Data[0].Time)
	require.NotNil(t, out.Pearson)
	require.NotNil(t, out.PValue)
	assert.InDelta(t, 1.0, *out.Pearson, 1e-9)
}

func TestChartData_EmptyAlignment(t *testing.T) {
	svc := NewChartService(&fakePrices{}, &fakeSentiment{points: []models.SentimentPoint{{Timestamp: d1, Value: 1}}}, time.UTC)

	out, err := svc.ChartData(context.Background(), "bitcoin", 1, 2)
	require.NoError(t, err)
	assert.NotNil(t, out.Data)
	assert.Empty(t, out.Data)
	assert.Nil(t, out.Pearson)
}

func TestAligned_PropagatesUpstreamError(t *testing.T) {
	upstream := &external.UpstreamError{Service: "coingecko", StatusCode: 404, Body: []byte(`{"error":"coin not found"}`)}
	svc := NewChartService(&fakePrices{err: upstream}, &fakeSentiment{block: true}, time.UTC)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := svc.Aligned(ctx, "nope", 1, 2)
	var ue *external.UpstreamError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, 404, ue.StatusCode)
	assert.NoError(t, ctx.Err(), "sibling fetch must be cancelled, not the caller")
}

func TestAligned_SentimentError(t *testing.T) {
	shape := &external.ShapeError{Service: "alternative.me", Field: "data"}
	prices := &fakePrices{points: []models.PricePoint{{TimestampMs: d1 * 1000, Price: 1}}}
	svc := NewChartService(prices, &fakeSentiment{err: shape}, time.UTC)

	_, err := svc.Aligned(context.Background(), "bitcoin", 1, 2)
	var se *external.ShapeError
	assert.True(t, errors.As(err, &se))
	assert.EqualValues(t, 1, prices.calls.Load())
}
