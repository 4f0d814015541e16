// Package server exposes slide assembly over HTTP.
//
// Routes:
//
//	GET     /              status page
//	GET     /health        liveness probe, plain "OK"
//	POST    /generate-ppt  JSON slides in, .pptx attachment out
//	OPTIONS /generate-ppt  CORS preflight
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-pptgen"
	"github.com/alnah/go-pptgen/internal/config"
	"github.com/alnah/go-pptgen/internal/fileutil"
)

// Sentinel errors for server operations.
var (
	ErrListen       = errors.New("server: cannot listen")
	ErrTemplatePath = errors.New("server: cannot resolve template path")
)

// defaultShutdownTimeout applies when Config.ShutdownTimeout is zero.
const defaultShutdownTimeout = 10 * time.Second

// readHeaderTimeout bounds slow-header clients regardless of configuration.
const readHeaderTimeout = 10 * time.Second

// Assembler builds a presentation from the template at path.
type Assembler interface {
	AssembleFile(ctx context.Context, path string, specs []pptgen.SlideSpec) (*pptgen.Result, error)
}

// Compile-time interface implementation check.
var _ Assembler = (*pptgen.Assembler)(nil)

// Config holds the resolved server settings.
type Config struct {
	Addr            string
	AllowedOrigins  []string // "*" allows any origin
	TemplatePath    string   // absolute path of the .pptx template
	OutputFilename  string
	MaxBodyBytes    int64
	Workers         int // concurrent assemblies, 0 = auto
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Shown on the status page.
	Version      string
	LayoutPolicy string
	Sections     bool
}

// ConfigFrom converts a validated service configuration, resolving a
// relative template path against the executable's directory.
func ConfigFrom(c *config.Config, version string) (Config, error) {
	templatePath, err := fileutil.ResolveFromExecutable(c.Template.Path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrTemplatePath, err)
	}

	read, write, idle, shutdown := c.Server.Timeouts()
	return Config{
		Addr:            c.Server.Addr,
		AllowedOrigins:  append([]string(nil), c.CORS.AllowedOrigins...),
		TemplatePath:    templatePath,
		OutputFilename:  c.Output.Filename,
		MaxBodyBytes:    c.Server.MaxBodyBytes,
		Workers:         c.Server.Workers,
		ReadTimeout:     read,
		WriteTimeout:    write,
		IdleTimeout:     idle,
		ShutdownTimeout: shutdown,
		Version:         version,
		LayoutPolicy:    c.Slides.LayoutPolicy,
		Sections:        c.Sections.Enabled,
	}, nil
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server serves the generate endpoint. Create with New.
type Server struct {
	cfg     Config
	asm     Assembler
	logger  *zap.Logger
	pool    *pptgen.WorkerPool
	status  *template.Template
	handler http.Handler
}

// New creates a Server. asm is shared by all requests and must be safe for
// concurrent use.
func New(cfg Config, asm Assembler, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		asm:    asm,
		logger: zap.NewNop(),
		pool:   pptgen.NewWorkerPool(pptgen.ResolveWorkers(cfg.Workers)),
		status: statusTemplate,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the full HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrListen, s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled. In-flight requests
// get ShutdownTimeout to complete. Returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
		ErrorLog:          zap.NewStdLog(s.logger.Named("http")),
	}

	s.logger.Info("listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("template", s.cfg.TemplatePath),
		zap.Strings("origins", s.cfg.AllowedOrigins),
		zap.Int("workers", s.pool.Size()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down", zap.Duration("timeout", timeout))
	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}
	if err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
