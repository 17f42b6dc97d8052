// Package matching provides a client for the catalog matching API, which
// proposes catalog items for a batch of free-text queries.
package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/po-matcher/internal/model"
	"github.com/sells-group/po-matcher/pkg/upstream"
)

// ServiceName identifies the matching service in upstream errors.
const ServiceName = "matching"

// Client defines the matching operations.
type Client interface {
	// MatchBatch submits all queries in one request and returns the
	// candidate lists keyed by query text.
	MatchBatch(ctx context.Context, queries []string) (model.MatchResultMap, error)
}

// BatchRequest is the body of a batch match call.
type BatchRequest struct {
	Queries []string `json:"queries"`
}

// BatchResponse is the parsed batch match response.
type BatchResponse struct {
	Results model.MatchResultMap `json:"results"`
}

// Option configures the matching client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	ratePerSec float64
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithTimeout bounds the matching call. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRateLimit throttles outbound calls. Zero disables throttling.
func WithRateLimit(perSec float64) Option {
	return func(o *options) {
		o.ratePerSec = perSec
	}
}

type httpClient struct {
	endpoint  string
	transport *upstream.Transport
}

// NewClient creates a matching client posting to endpoint.
func NewClient(endpoint string, opts ...Option) Client {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	var topts []upstream.TransportOption
	if o.httpClient != nil {
		topts = append(topts, upstream.WithHTTPClient(o.httpClient))
	}
	topts = append(topts, upstream.WithTimeout(o.timeout), upstream.WithRateLimit(o.ratePerSec))

	return &httpClient{
		endpoint:  endpoint,
		transport: upstream.NewTransport(ServiceName, topts...),
	}
}

func (c *httpClient) MatchBatch(ctx context.Context, queries []string) (model.MatchResultMap, error) {
	if queries == nil {
		queries = []string{}
	}
	payload, err := json.Marshal(BatchRequest{Queries: queries})
	if err != nil {
		return nil, eris.Wrap(err, "matching: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "matching: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !upstream.IsSuccess(status) {
		return nil, upstream.NewError(ServiceName, status, string(body))
	}

	var resp BatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, upstream.BadGateway(ServiceName, eris.Wrap(err, "matching: unmarshal response"))
	}
	if resp.Results == nil {
		resp.Results = model.MatchResultMap{}
	}
	return resp.Results, nil
}
