package external

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kjannette/fng-correlation-backend/internal/httputil"
)

// defaultMaxBodyBytes bounds every upstream payload; the full Fear & Greed
// history is a few hundred KB.
const defaultMaxBodyBytes = 16 << 20

type Options struct {
	Timeout      time.Duration
	Retry        httputil.RetryConfig
	MaxBodyBytes int64
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Retry.MaxAttempts <= 0 {
		o.Retry = httputil.DefaultRetry
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBodyBytes
	}
	return o
}

type response struct {
	status      int
	body        []byte
	contentType string
}

// fetch performs a GET with retry and returns the body of a successful
// response. Status >= 400 becomes *UpstreamError, network failures
// *TransportError and a body over opts.MaxBodyBytes *ShapeError.
func fetch(ctx context.Context, client *http.Client, opts Options, service, url string) (*response, error) {
	resp, err := httputil.Do(ctx, client, opts.Retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, &TransportError{Service: service, Err: err}
	}

	body, err := httputil.ReadBody(resp, opts.MaxBodyBytes)
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		return nil, &ShapeError{Service: service, Field: "body", Err: err}
	}
	if err != nil {
		return nil, &TransportError{Service: service, Err: err}
	}

	out := &response{
		status:      resp.StatusCode,
		body:        body,
		contentType: resp.Header.Get("Content-Type"),
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &UpstreamError{
			Service:     service,
			StatusCode:  out.status,
			Body:        out.body,
			ContentType: out.contentType,
		}
	}
	return out, nil
}
