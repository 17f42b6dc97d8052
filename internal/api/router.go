// Package api exposes the purchase-order matching workflow over HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/po-matcher/internal/model"
)

// Processor runs an uploaded document through extraction and matching.
type Processor interface {
	Process(ctx context.Context, filename string, body io.Reader) (model.AugmentedResult, error)
}

// OrderStore persists confirmed matches and lists orders.
type OrderStore interface {
	ConfirmMatches(ctx context.Context, matches []model.ConfirmedMatch) error
	ListOrders(ctx context.Context) ([]model.Order, error)
}

// Options configures the router.
type Options struct {
	CORSOrigins    []string
	// MaxUploadBytes caps the /upload request body. Zero means no limit.
	MaxUploadBytes int64
}

type handlers struct {
	pipeline       Processor
	store          OrderStore
	maxUploadBytes int64
}

// NewRouter builds the HTTP handler for the service.
func NewRouter(opts Options, proc Processor, st OrderStore) http.Handler {
	h := &handlers{
		pipeline:       proc,
		store:          st,
		maxUploadBytes: opts.MaxUploadBytes,
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Post("/health", h.health)
	r.Post("/upload", h.upload)
	r.Post("/confirm_matches", h.confirmMatches)
	r.Get("/orders", h.listOrders)

	return r
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Info("api: request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
