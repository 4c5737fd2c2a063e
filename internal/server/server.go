// Package server exposes the extraction service over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/giftvault/voucher-service/internal/service"
	"github.com/giftvault/voucher-service/internal/store"
)

const requestTimeout = 60 * time.Second

// NewRouter builds the HTTP router. The store may be nil, in which case the
// voucher persistence routes are not mounted.
func NewRouter(svc *service.Service, st store.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Session-ID"},
	}))
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	h := &handler{svc: svc, store: st}
	r.Post("/ai/extract", h.extract)

	if st != nil {
		r.Route("/vouchers", func(r chi.Router) {
			r.Post("/", h.saveVoucher)
			r.Get("/", h.listVouchers)
			r.Get("/{id}", h.getVoucher)
			r.Delete("/{id}", h.deleteVoucher)
		})
	}

	return r
}

// requestID ensures every request carries X-Request-ID and X-Session-ID,
// generating them when the client did not send any. Both are echoed on the
// response so callers can correlate logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
			r.Header.Set("X-Request-ID", reqID)
		}
		sessID := r.Header.Get("X-Session-ID")
		if sessID == "" {
			sessID = uuid.New().String()
			r.Header.Set("X-Session-ID", sessID)
		}
		w.Header().Set("X-Request-ID", reqID)
		w.Header().Set("X-Session-ID", sessID)
		next.ServeHTTP(w, r)
	})
}

func requestLogger(r *http.Request) *zap.Logger {
	return zap.L().With(
		zap.String("requestId", r.Header.Get("X-Request-ID")),
		zap.String("sessionId", r.Header.Get("X-Session-ID")),
	)
}
