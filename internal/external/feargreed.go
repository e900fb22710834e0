package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kjannette/fng-correlation-backend/internal/models"
)

const fearGreedService = "alternative.me"

type FearGreedClient struct {
	url        string
	httpClient *http.Client
	opts       Options
}

// NewFearGreedClient targets the index endpoint at baseURL and always asks
// for the unlimited history.
func NewFearGreedClient(baseURL string, opts Options) *FearGreedClient {
	opts = opts.withDefaults()
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return &FearGreedClient{
		url:        baseURL + sep + "limit=0",
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
	}
}

// History is the index envelope as published upstream.
type History struct {
	Name     string                  `json:"name"`
	Data     []models.SentimentPoint `json:"data"`
	Metadata json.RawMessage         `json:"metadata,omitempty"`
}

// rawReading mirrors the upstream entry. Numbers arrive as strings but plain
// JSON numbers are accepted too.
type rawReading struct {
	Value          json.RawMessage `json:"value"`
	Classification *string         `json:"value_classification"`
	Timestamp      json.RawMessage `json:"timestamp"`
}

// History fetches the whole index history in upstream order (newest first).
func (c *FearGreedClient) History(ctx context.Context) (*History, error) {
	resp, err := fetch(ctx, c.httpClient, c.opts, fearGreedService, c.url)
	if err != nil {
		return nil, fmt.Errorf("fear and greed history: %w", err)
	}
	return ParseHistory(resp.body)
}

func ParseHistory(body []byte) (*History, error) {
	var payload struct {
		Name     string          `json:"name"`
		Data     *[]rawReading   `json:"data"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ShapeError{Service: fearGreedService, Field: "body", Err: err}
	}
	if payload.Data == nil {
		return nil, &ShapeError{Service: fearGreedService, Field: "data"}
	}

	points := make([]models.SentimentPoint, 0, len(*payload.Data))
	for i, r := range *payload.Data {
		p, err := r.point()
		if err != nil {
			return nil, &ShapeError{Service: fearGreedService, Field: fmt.Sprintf("data[%d]", i), Err: err}
		}
		points = append(points, p)
	}

	return &History{Name: payload.Name, Data: points, Metadata: payload.Metadata}, nil
}

func (r rawReading) point() (models.SentimentPoint, error) {
	v, err := flexInt(r.Value)
	if err != nil {
		return models.SentimentPoint{}, fmt.Errorf("value: %w", err)
	}
	if v < 0 || v > 100 {
		return models.SentimentPoint{}, fmt.Errorf("value %d outside 0-100", v)
	}
	ts, err := flexInt(r.Timestamp)
	if err != nil {
		return models.SentimentPoint{}, fmt.Errorf("timestamp: %w", err)
	}
	p := models.SentimentPoint{Timestamp: ts, Value: int(v)}
	if r.Classification != nil {
		p.Classification = *r.Classification
	}
	return p, nil
}

// flexInt decodes an integer given either as a JSON number or a string.
func flexInt(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, fmt.Errorf("missing")
	}
	s = strings.Trim(s, `"`)
	return strconv.ParseInt(s, 10, 64)
}
