package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/haukened/ipmon/internal/ipmon/common/clock"
	"github.com/haukened/ipmon/internal/ipmon/common/log"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

// HTTPServer exposes the monitor's read side over HTTP.
type HTTPServer struct {
	addr     string
	clock    clock.Clock
	index    SightingIndex
	logger   log.Logger
	metrics  MetricsSource
	snaps    SnapshotSource
	useCache bool
	version  string
	window   int

	mu       sync.RWMutex
	srv      *http.Server
	listener net.Listener
	running  bool
}

// Options configures the HTTP server.
type Options struct {
	// required
	Addr      string
	Snapshots SnapshotSource
	Metrics   MetricsSource
	// optional
	Index    SightingIndex
	Clock    clock.Clock
	Logger   log.Logger
	Window   int
	UseCache bool
	Version  string
}

func NewHTTPServer(opts Options) (*HTTPServer, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if opts.Snapshots == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}
	if opts.Metrics == nil {
		return nil, fmt.Errorf("metrics source is required")
	}
	if opts.Window <= 0 {
		opts.Window = 90
	}
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &HTTPServer{
		addr:     opts.Addr,
		clock:    opts.Clock,
		index:    opts.Index,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		snaps:    opts.Snapshots,
		useCache: opts.UseCache,
		version:  opts.Version,
		window:   opts.Window,
	}, nil
}

// Handler returns the routed handler. It is usable without Start.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/exports/{format}", s.handleExport)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/lookup", s.handleLookup)
	return r
}

// Start binds the listen address and serves in the background until Stop is
// called or ctx is canceled.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("HTTP server already running")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.listener = ln
	s.srv = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	s.running = true

	s.logger.Info(map[string]any{
		"transport": "http",
		"address":   ln.Addr().String(),
	}, "HTTP server started")

	go s.serve(s.srv, ln)
	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			s.logger.Warn(map[string]any{"error": err.Error()}, "error stopping HTTP server")
		}
	}()
	return nil
}

func (s *HTTPServer) serve(srv *http.Server, ln net.Listener) {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error(map[string]any{"error": err.Error()}, "HTTP server failed")
	}
}

// Stop gracefully shuts down the server, waiting for in-flight requests.
func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	s.running = false

	s.logger.Info(map[string]any{
		"transport": "http",
		"address":   s.listener.Addr().String(),
	}, "HTTP server stopped")
	return err
}

// Address returns the bound address while running, otherwise the configured one.
func (s *HTTPServer) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.running && s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug(map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"bytes":    ww.BytesWritten(),
			"duration": time.Since(start).String(),
		}, "handled request")
	})
}
