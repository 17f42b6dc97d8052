// Package extraction provides a client for the purchase-order extraction API,
// which turns an uploaded document into a list of line items.
package extraction

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/po-matcher/internal/model"
	"github.com/sells-group/po-matcher/pkg/upstream"
)

// ServiceName identifies the extraction service in upstream errors.
const ServiceName = "extraction"

const defaultContentType = "application/pdf"

// Document is a stored upload handed to the extraction service.
type Document struct {
	Filename    string
	ContentType string // optional; derived from Filename when empty
	Body        io.Reader
}

// Client defines the extraction operations.
type Client interface {
	// Extract sends the document and returns its line items in service order.
	Extract(ctx context.Context, doc Document) ([]model.ExtractedLineItem, error)
}

// Option configures the extraction client.
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

// WithTimeout bounds the extraction call. Zero keeps the transport default.
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

// NewClient creates an extraction client posting to endpoint.
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

func (c *httpClient) Extract(ctx context.Context, doc Document) ([]model.ExtractedLineItem, error) {
	if doc.Body == nil {
		return nil, eris.New("extraction: document has no body")
	}

	body, contentType, writeErr := streamDocument(doc)
	defer body.Close() //nolint:errcheck

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, eris.Wrap(err, "extraction: create request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	status, respBody, err := c.transport.Do(ctx, req)
	if err != nil {
		// A local read failure aborts the upload; report it rather than
		// the resulting transport error.
		select {
		case werr := <-writeErr:
			if werr != nil {
				return nil, werr
			}
		default:
		}
		return nil, err
	}
	if !upstream.IsSuccess(status) {
		return nil, upstream.NewError(ServiceName, status, string(respBody))
	}

	if err := ValidateResponse(respBody); err != nil {
		return nil, upstream.BadGateway(ServiceName, err)
	}

	var items []model.ExtractedLineItem
	if err := json.Unmarshal(respBody, &items); err != nil {
		return nil, upstream.BadGateway(ServiceName, eris.Wrap(err, "extraction: unmarshal response"))
	}
	return items, nil
}

// streamDocument writes the multipart body, with the document in field
// "file", through a pipe as the request reads it. A write failure is sent on
// the returned channel before the pipe is closed with it.
func streamDocument(doc Document) (io.ReadCloser, string, <-chan error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	errc := make(chan error, 1)

	go func() {
		err := writeDocument(mw, doc)
		errc <- err
		pw.CloseWithError(err) //nolint:errcheck
	}()
	return pr, mw.FormDataContentType(), errc
}

func writeDocument(mw *multipart.Writer, doc Document) error {
	ct := doc.ContentType
	if ct == "" {
		ct = ContentTypeFor(doc.Filename)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": doc.Filename,
	}))
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return eris.Wrap(err, "extraction: create file part")
	}
	if _, err := io.Copy(part, doc.Body); err != nil {
		return eris.Wrap(err, "extraction: copy document")
	}
	return eris.Wrap(mw.Close(), "extraction: close multipart writer")
}

// ContentTypeFor guesses a document's MIME type from its extension, falling
// back to application/pdf.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return defaultContentType
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultContentType
}
