package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kjannette/fng-correlation-backend/internal/external"
	"github.com/kjannette/fng-correlation-backend/internal/models"
	"github.com/kjannette/fng-correlation-backend/internal/stats"
	"github.com/kjannette/fng-correlation-backend/internal/timeseries"
)

type PriceSource interface {
	MarketChart(ctx context.Context, coinID string, from, to int64) ([]models.PricePoint, error)
}

type SentimentSource interface {
	History(ctx context.Context) (*external.History, error)
}

// ChartService joins a coin's price history with the Fear & Greed index.
type ChartService struct {
	prices    PriceSource
	sentiment SentimentSource
	loc       *time.Location
}

func NewChartService(prices PriceSource, sentiment SentimentSource, loc *time.Location) *ChartService {
	if loc == nil {
		loc = time.UTC
	}
	return &ChartService{prices: prices, sentiment: sentiment, loc: loc}
}

func (s *ChartService) Location() *time.Location { return s.loc }

// Aligned fetches both series concurrently and returns the records of the
// days present in both, in price order.
func (s *ChartService) Aligned(ctx context.Context, coinID string, from, to int64) ([]models.AlignedRecord, error) {
	var (
		prices []models.PricePoint
		hist   *external.History
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prices, err = s.prices.MarketChart(gctx, coinID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		hist, err = s.sentiment.History(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return timeseries.Align(prices, models.Chronological(hist.Data), s.loc), nil
}

// ChartData assembles the correlation summary. A degenerate aligned set
// (fewer than two days, or a flat series) yields null statistics rather
// than an error.
func (s *ChartService) ChartData(ctx context.Context, coinID string, from, to int64) (*models.ChartData, error) {
	records, err := s.Aligned(ctx, coinID, from, to)
	if err != nil {
		return nil, err
	}

	out := &models.ChartData{Data: records}
	res, err := stats.Pearson(timeseries.Pairs(records))
	switch {
	case err == nil:
		out.Pearson = &res.Pearson
		out.PValue = &res.PValue
	case errors.Is(err, stats.ErrDegenerateStatistics):
		fmt.Printf("[CHART] %s: %v, statistics omitted\n", coinID, err)
	default:
		return nil, fmt.Errorf("correlate %s: %w", coinID, err)
	}
	return out, nil
}
