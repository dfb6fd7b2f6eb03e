package server

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"orders/internal/dto"
	"orders/internal/httputil"
	"orders/internal/infrastructure/metrics"
)

//go:embed static/index.html
var indexPage []byte

// Routes is implemented by every module that mounts its own endpoints.
type Routes interface {
	Routes(r chi.Router)
}

// NewRouter builds the HTTP handler. m may be nil, in which case no
// metrics are recorded or exposed.
func NewRouter(orders Routes, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}

	r.NotFound(errorHandler(logger, http.StatusNotFound, "NOT_FOUND", "resource not found"))
	r.MethodNotAllowed(errorHandler(logger, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"))

	r.Get("/", index)
	r.Get("/health", health(logger))
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	orders.Routes(r)

	return r
}

func index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}

func health(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, logger, http.StatusOK, dto.HealthResponse{Status: http.StatusOK, Message: "Healthy"})
	}
}

func errorHandler(logger *zap.Logger, status int, code, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, logger, status, dto.ErrorResponse{
			TraceID: uuid.New().String(),
			Status:  status,
			Code:    code,
			Message: message,
		})
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(wrapped, r)

			logger.Debug("request handled",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.Status()),
			)
		})
	}
}
