package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
	"github.com/couchcryptid/quake-data-etl/internal/pipeline"
	"github.com/couchcryptid/quake-data-etl/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runner executes one load-filter run for a date range.
type Runner interface {
	Run(ctx context.Context, r domain.DateRange) (*pipeline.Result, error)
}

// Options configures date handling for API requests.
type Options struct {
	Location         *time.Location
	DefaultRangeDays int
}

const loadFailedMessage = "地震データの読み込みに失敗しました。"

// Server exposes health, readiness, metrics, and event API endpoints.
type Server struct {
	httpServer *http.Server
	runner     Runner
	opts       Options
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api/events, /api/map, and /api/stats routes.
func NewServer(addr string, runner Runner, ready sharedobs.ReadinessChecker, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultRangeDays <= 0 {
		opts.DefaultRangeDays = domain.DefaultRangeDays
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withRequestID(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		runner:  runner,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/events", s.handle(func(res *pipeline.Result) any { return res.Events }))
	mux.HandleFunc("GET /api/map", s.handle(func(res *pipeline.Result) any { return view.BuildMap(res.Events) }))
	mux.HandleFunc("GET /api/stats", s.handle(func(res *pipeline.Result) any { return view.BuildStats(res.Events) }))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type rangeBody struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

type responseBody struct {
	RunID       string              `json:"run_id"`
	Range       rangeBody           `json:"range"`
	TotalRows   int                 `json:"total_rows"`
	DroppedRows int                 `json:"dropped_rows"`
	Warnings    []domain.RowWarning `json:"warnings"`
	Data        any                 `json:"data"`
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// handle parses the start/end query parameters, runs the pipeline, and
// writes the envelope with the payload built by build.
func (s *Server) handle(build func(*pipeline.Result) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		logger := s.logger.With("request_id", w.Header().Get(requestIDHeader), "path", r.URL.Path)

		dr, err := domain.ParseDateRange(q.Get("start"), q.Get("end"), s.opts.Location, s.opts.DefaultRangeDays)
		if err != nil {
			s.metrics.InvalidRanges.Inc()
			logger.Info("invalid date range", "start", q.Get("start"), "end", q.Get("end"), "error", err)
			s.write(w, r, http.StatusBadRequest, errorBody{Error: domain.InvalidRangeMessage, Detail: err.Error()})
			return
		}

		res, err := s.runner.Run(r.Context(), dr)
		switch {
		case errors.Is(err, domain.ErrInvalidRange):
			s.write(w, r, http.StatusBadRequest, errorBody{Error: domain.InvalidRangeMessage, Detail: err.Error()})
			return
		case err != nil:
			logger.Error("run failed", "error", err)
			s.write(w, r, http.StatusInternalServerError, errorBody{Error: loadFailedMessage, Detail: err.Error()})
			return
		}

		warnings := res.Warnings
		if warnings == nil {
			warnings = []domain.RowWarning{}
		}
		s.write(w, r, http.StatusOK, responseBody{
			RunID: res.RunID,
			Range: rangeBody{
				Start: res.Range.Start.Format(time.DateOnly),
				End:   res.Range.End.Format(time.DateOnly),
				Days:  res.Range.Days(),
			},
			TotalRows:   res.Rows,
			DroppedRows: res.Dropped,
			Warnings:    warnings,
			Data:        build(res),
		})
	}
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, body any) {
	if err := writeResponse(w, r, status, body); err != nil {
		s.logger.Warn("write response failed", "path", r.URL.Path, "error", err)
	}
}

const requestIDHeader = "X-Request-ID"

// withRequestID propagates or assigns an X-Request-ID on every response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
