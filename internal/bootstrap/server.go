package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type shutdownHook struct {
	name string
	fn   func()
}

// Server runs the payroll API and releases its backing stores only after
// in-flight requests have drained.
type Server struct {
	http    *http.Server
	audit   AuditLogger
	logger  *zap.Logger
	timeout time.Duration
	hooks   []shutdownHook
}

func NewServer(handler http.Handler, cfg ServerConfig, audit AuditLogger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.L()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		audit:   audit,
		logger:  logger.Named("server"),
		timeout: timeout,
	}
}

// OnShutdown registers fn to run after the listener has drained. Hooks run
// in reverse registration order.
func (s *Server) OnShutdown(name string, fn func()) {
	s.hooks = append(s.hooks, shutdownHook{name: name, fn: fn})
}

// Run serves until ctx is done or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		s.release()
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	served := make(chan error, 1)
	go func() {
		s.logger.Info("http server running", zap.String("addr", ln.Addr().String()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			served <- err
		}
		close(served)
	}()

	select {
	case err := <-served:
		s.release()
		return err
	case <-ctx.Done():
	}

	reason := context.Cause(ctx).Error()
	s.audit.Log(ctx, AuditLog{
		Action:  "SERVER_SHUTDOWN",
		Message: "payroll api is shutting down",
		Meta:    map[string]any{"reason": reason, "pending_hooks": len(s.hooks)},
	})

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Error("forced shutdown", zap.Error(err))
	}
	s.release()
	if err == nil {
		s.logger.Info("server exited gracefully")
	}
	return err
}

func (s *Server) release() {
	for i := len(s.hooks) - 1; i >= 0; i-- {
		s.logger.Info("releasing", zap.String("resource", s.hooks[i].name))
		s.hooks[i].fn()
	}
	s.hooks = nil
}

// StartHTTPServer serves until SIGINT or SIGTERM.
func StartHTTPServer(srv *Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
