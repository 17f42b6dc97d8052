package upstream

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Transport executes single-shot requests against one external service.
// There is no retry: a failure is reported to the caller as-is.
type Transport struct {
	service string
	http    *http.Client
	limiter *rate.Limiter
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) TransportOption {
	return func(t *Transport) {
		t.http = hc
	}
}

// WithTimeout bounds each request. Zero leaves the client's timeout unchanged.
// The timeout is set on a copy, so a client passed to WithHTTPClient is not
// modified.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		if d > 0 {
			hc := *t.http
			hc.Timeout = d
			t.http = &hc
		}
	}
}

// WithRateLimit throttles outbound calls to perSec requests per second.
// Zero or negative disables throttling.
func WithRateLimit(perSec float64) TransportOption {
	return func(t *Transport) {
		if perSec > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

// NewTransport creates a Transport for service. Options apply in order, so
// WithTimeout should follow WithHTTPClient.
func NewTransport(service string, opts ...TransportOption) *Transport {
	t := &Transport{
		service: service,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Service returns the service name used in errors.
func (t *Transport) Service() string {
	return t.service
}

// Do sends req once and returns the status code and the full response body.
// Transport-level failures come back as a 502 *Error.
func (t *Transport) Do(ctx context.Context, req *http.Request) (int, []byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return 0, nil, eris.Wrapf(err, "%s: rate limit wait", t.service)
		}
	}

	resp, err := t.http.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, eris.Wrapf(ctx.Err(), "%s: request cancelled", t.service)
		}
		return 0, nil, BadGateway(t.service, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, BadGateway(t.service, eris.Wrap(err, "read response body"))
	}
	return resp.StatusCode, body, nil
}
