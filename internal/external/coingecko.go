package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kjannette/fng-correlation-backend/internal/models"
)

const coingeckoService = "coingecko"

type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	opts       Options
}

func NewCoinGeckoClient(baseURL, apiKey string, opts Options) *CoinGeckoClient {
	opts = opts.withDefaults()
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
	}
}

func (c *CoinGeckoClient) coinsListURL() string {
	q := url.Values{}
	q.Set("x_cg_demo_api_key", c.apiKey)
	return c.baseURL + "/coins/list?" + q.Encode()
}

func (c *CoinGeckoClient) marketChartURL(coinID string, from, to int64) string {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("from", strconv.FormatInt(from, 10))
	q.Set("to", strconv.FormatInt(to, 10))
	q.Set("precision", "2")
	q.Set("x_cg_demo_api_key", c.apiKey)
	return fmt.Sprintf("%s/coins/%s/market_chart/range?%s", c.baseURL, url.PathEscape(coinID), q.Encode())
}

// ListCoins returns the full coin catalog.
func (c *CoinGeckoClient) ListCoins(ctx context.Context) ([]models.Coin, error) {
	resp, err := fetch(ctx, c.httpClient, c.opts, coingeckoService, c.coinsListURL())
	if err != nil {
		return nil, fmt.Errorf("coingecko coins list: %w", err)
	}

	var raw []struct {
		ID     *string `json:"id"`
		Symbol *string `json:"symbol"`
		Name   *string `json:"name"`
	}
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, &ShapeError{Service: coingeckoService, Field: "coins", Err: err}
	}

	coins := make([]models.Coin, 0, len(raw))
	for i, r := range raw {
		if r.ID == nil || r.Name == nil {
			return nil, &ShapeError{Service: coingeckoService, Field: fmt.Sprintf("coins[%d]", i)}
		}
		coin := models.Coin{ID: *r.ID, Name: *r.Name}
		if r.Symbol != nil {
			coin.Symbol = *r.Symbol
		}
		coins = append(coins, coin)
	}
	return coins, nil
}

// MarketChartRaw returns the market-chart-range payload for coinID in USD
// between from and to (Unix seconds) without interpreting it.
func (c *CoinGeckoClient) MarketChartRaw(ctx context.Context, coinID string, from, to int64) ([]byte, error) {
	resp, err := fetch(ctx, c.httpClient, c.opts, coingeckoService, c.marketChartURL(coinID, from, to))
	if err != nil {
		return nil, fmt.Errorf("coingecko market chart %s: %w", coinID, err)
	}
	return resp.body, nil
}

// MarketChart returns the price series of coinID in upstream order.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, coinID string, from, to int64) ([]models.PricePoint, error) {
	body, err := c.MarketChartRaw(ctx, coinID, from, to)
	if err != nil {
		return nil, err
	}
	return ParseMarketChart(body)
}

// ParseMarketChart decodes the "prices" member of a market chart payload.
// Every entry must be a [timestampMs, price] pair.
func ParseMarketChart(body []byte) ([]models.PricePoint, error) {
	var payload struct {
		Prices *[][]json.Number `json:"prices"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, &ShapeError{Service: coingeckoService, Field: "market_chart", Err: err}
	}
	if payload.Prices == nil {
		return nil, &ShapeError{Service: coingeckoService, Field: "prices"}
	}

	points := make([]models.PricePoint, 0, len(*payload.Prices))
	for i, pair := range *payload.Prices {
		field := fmt.Sprintf("prices[%d]", i)
		if len(pair) != 2 {
			return nil, &ShapeError{Service: coingeckoService, Field: field, Err: fmt.Errorf("expected 2 values, got %d", len(pair))}
		}
		ts, err := pair[0].Float64()
		if err != nil {
			return nil, &ShapeError{Service: coingeckoService, Field: field, Err: err}
		}
		price, err := pair[1].Float64()
		if err != nil {
			return nil, &ShapeError{Service: coingeckoService, Field: field, Err: err}
		}
		points = append(points, models.PricePoint{TimestampMs: int64(ts), Price: price})
	}
	return points, nil
}

// FilterCoins keeps the coins whose lower-cased name is in allowed. The keys
// of allowed must already be lower case.
func FilterCoins(coins []models.Coin, allowed map[string]struct{}) []models.Coin {
	out := make([]models.Coin, 0, len(allowed))
	for _, c := range coins {
		if _, ok := allowed[strings.ToLower(c.Name)]; ok {
			out = append(out, c)
		}
	}
	return out
}
