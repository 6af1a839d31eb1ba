package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/kakaka820/Titanic/internal/logging"
	"github.com/kakaka820/Titanic/internal/metrics"
	"github.com/kakaka820/Titanic/internal/store"
	"github.com/kakaka820/Titanic/pkg/analysis"
)

// Server exposes the passenger records and analyses over HTTP.
type Server struct {
	store    store.Store
	analyzer *analysis.Analyzer
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
	router   *chi.Mux

	group  singleflight.Group
	mu     sync.RWMutex
	result *analysis.Result
}

// New wires the routes. m may be nil to skip Prometheus instrumentation.
func New(st store.Store, a *analysis.Analyzer, logger logrus.FieldLogger, m *metrics.Metrics) *Server {
	s := &Server{
		store:    st,
		analyzer: a,
		logger:   logger,
		metrics:  m,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/passengers", s.handlePassengers)
		r.Get("/analysis/eda", s.handleEDA)
		r.Get("/analysis/ml", s.handleML)
	})
}

// ServeHTTP lets the server be mounted or tested directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.LogInfo(s.logger, "listening on "+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePassengers(w http.ResponseWriter, r *http.Request) {
	ps, err := s.store.Passengers(r.Context())
	if err != nil {
		s.fail(w, r, "failed to load passengers", err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleEDA(w http.ResponseWriter, r *http.Request) {
	ps, err := s.store.Passengers(r.Context())
	if err != nil {
		s.fail(w, r, "failed to load passengers", err)
		return
	}
	writeJSON(w, http.StatusOK, analysis.Summarize(ps))
}

// handleML computes the model comparison once; concurrent first callers
// share the same run and later callers get the cached result.
func (s *Server) handleML(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	cached := s.result
	s.mu.RUnlock()
	if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	v, err, _ := s.group.Do("ml", func() (interface{}, error) {
		s.mu.RLock()
		cached := s.result
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		ps, err := s.store.Passengers(context.WithoutCancel(r.Context()))
		if err != nil {
			return nil, err
		}
		res, err := s.analyzer.Run(context.WithoutCancel(r.Context()), ps)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.result = res
		s.mu.Unlock()
		return res, nil
	})
	if err != nil {
		s.fail(w, r, "analysis failed", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"path":       r.URL.Path,
	}).WithError(err).Error(msg)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": msg})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Method, route, status, elapsed)
		}
		s.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"bytes":      ww.BytesWritten(),
			"elapsed":    elapsed,
		}).Debug("request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
