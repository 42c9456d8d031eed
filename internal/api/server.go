package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
	"github.com/nerrad567/gray-logic-authcore/internal/audit"
	"github.com/nerrad567/gray-logic-authcore/internal/auth"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-authcore/internal/user"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// defaultMaxBodyBytes applies when the config leaves max_body_bytes unset.
const defaultMaxBodyBytes = 1 << 20

// HealthChecker is implemented by every component the health endpoint reports on.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Auth    *auth.Service
	Users   *user.Service
	Audit   audit.Repository
	Version string

	// Checks are reported by /health, keyed by component name. Optional.
	Checks map[string]HealthChecker

	// Stats feeds /metrics with database pool statistics. Optional.
	Stats StatsProvider
}

// Server is the HTTP API server for authcore.
//
// It is created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	auth    *auth.Service
	users   *user.Service
	audit   audit.Repository
	checks  map[string]HealthChecker
	stats   StatsProvider
	version string

	userACL  *acl.Engine[*user.Record]
	auditACL *acl.Engine[*audit.Event]

	startTime time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a new API server. The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user service is required")
	}
	if deps.Audit == nil {
		return nil, fmt.Errorf("audit repository is required")
	}

	if deps.Config.MaxBodyBytes <= 0 {
		deps.Config.MaxBodyBytes = defaultMaxBodyBytes
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		auth:      deps.Auth,
		users:     deps.Users,
		audit:     deps.Audit,
		checks:    deps.Checks,
		stats:     deps.Stats,
		version:   deps.Version,
		userACL:   user.NewACL(),
		auditACL:  audit.NewACL(),
		startTime: time.Now(),
	}, nil
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listener and serves in a background goroutine.
// A bind failure (port in use) is returned directly.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", srv.Addr, err)
	}
	s.server = srv
	s.listener = ln

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS", "address", ln.Addr().String(), "cert", s.cfg.TLS.CertFile)
			err = srv.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", ln.Addr().String())
			err = srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server, waiting up to 10 seconds
// for in-flight requests.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("api health check: %w", err)
	}
	if s.Addr() == "" {
		return fmt.Errorf("api server not started")
	}
	return nil
}
