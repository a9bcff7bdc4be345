package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/fitplan/internal/planner"
	"github.com/jonathan/fitplan/internal/server/middleware"
	"github.com/jonathan/fitplan/internal/server/ratelimit"
	"github.com/jonathan/fitplan/internal/types"
)

// PlanService is the plan pipeline as seen by the HTTP layer.
type PlanService interface {
	Generate(ctx context.Context, userID string, profile *types.UserFitnessProfile) (*planner.Outcome, error)
	GenerateStream(ctx context.Context, userID string, profile *types.UserFitnessProfile, onChunk func(string) error) (*planner.Outcome, error)
	ListPlans(ctx context.Context, userID string) ([]types.StoredPlanRecord, error)
	GetPlan(ctx context.Context, requesterID string, planID uuid.UUID) (*types.StoredPlanRecord, error)
}

// Catalog serves exercise catalog reads.
type Catalog interface {
	SearchExercises(ctx context.Context, query string, page, limit int) (*types.CatalogPage, error)
	GetExerciseByID(ctx context.Context, exerciseID string) (*types.CatalogExercise, error)
}

// Config holds server configuration
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimit       *ratelimit.Config
	// Health, when set, is called by GET /health to check storage.
	Health func(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	router          chi.Router
	plans           PlanService
	catalog         Catalog
	tokens          middleware.TokenValidator
	rateLimiter     *ratelimit.Limiter
	health          func(ctx context.Context) error
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// New creates a server. catalog may be nil, in which case the exercise
// endpoints answer 503.
func New(cfg Config, plans PlanService, catalog Catalog, tokens middleware.TokenValidator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 20 * time.Second
	}

	s := &Server{
		plans:           plans,
		catalog:         catalog,
		tokens:          tokens,
		rateLimiter:     ratelimit.NewLimiter(cfg.RateLimit),
		health:          cfg.Health,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}

	r := chi.NewRouter()
	r.Use(s.withRecover, s.withLogging, s.withCORS, s.withRateLimit)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(tokens))

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", s.handleGeneratePlan)
			r.Post("/stream", s.handleGeneratePlanStream)
			r.Get("/", s.handleListPlans)
			r.Get("/{id}", s.handleGetPlan)
			r.Get("/{id}/plan.md", s.handleGetPlanMarkdown)
		})

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleSearchExercises)
			r.Get("/{id}", s.handleGetExercise)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.jsonResponse(w, http.StatusNotFound, ErrorBody{Error: "route not found", Kind: planner.KindNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.jsonResponse(w, http.StatusMethodNotAllowed, ErrorBody{Error: "method not allowed", Kind: kindBadRequest})
	})

	s.router = r
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit enforces per-client limits keyed by remote IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for access logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// withRecover turns handler panics into 500 responses.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				s.jsonResponse(w, http.StatusInternalServerError, ErrorBody{Error: "internal server error", Kind: planner.KindInternal})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// handleHealth reports liveness and, when configured, storage reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "storage": "unreachable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse maps err to a status and a sanitized body.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	s.jsonResponse(w, status, errorBody(err))
}

// clientID uses the IP from RemoteAddr.
// TODO: honor X-Forwarded-For once trusted proxy ranges are configurable.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds()+0.999)))
	}
	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))
	s.jsonResponse(w, http.StatusTooManyRequests, ErrorBody{
		Error: "rate limit exceeded, please try again later",
		Kind:  kindRateLimited,
	})
}
