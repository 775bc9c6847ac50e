package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/nisix/errkit/logger"
	"github.com/nisix/errkit/observability"
	"github.com/nisix/errkit/server/endpoint"
	"github.com/nisix/errkit/server/middleware"
)

// Server is an HTTP server backed by Gin, served over HTTP/1.1 and h2c and
// instrumented with OpenTelemetry.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
	listener   net.Listener
}

// New creates a Server. No middleware is applied until ApplyMiddleware.
func New(cfg Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		_ = engine.SetTrustedProxies(nil)
	}

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	handler := h2c.NewHandler(otelhttp.NewHandler(engine, "http.server"), h2s)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		engine:     engine,
		config:     cfg,
		log:        log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ApplyMiddleware installs the standard stack: request id, request logging,
// the error handler, panic recovery, CORS, body-size limit and, when
// configured, rate limiting. Unmatched routes raise NotFound.
//
// opts.Debug falls back to Config.Errors.Debug, and opts.Logger to the
// server logger.
func (s *Server) ApplyMiddleware(opts ErrorHandlerOptions) {
	if opts.Debug == nil {
		opts.Debug = s.config.Errors.Debug
	}
	if opts.Logger == nil {
		opts.Logger = s.log.WithComponent("errors")
	}

	s.engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(s.log.WithComponent("http")),
		ErrorHandler(opts),
		middleware.Recovery(s.log.WithComponent("recovery")),
		middleware.CORS(s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
	)
	if s.config.RateLimit != nil {
		s.engine.Use(middleware.RateLimit(*s.config.RateLimit))
	}

	s.engine.NoRoute(NotFoundHandler)
	s.engine.NoMethod(MethodNotAllowedHandler)
}

// RegisterDefaultEndpoints registers GET /health.
func (s *Server) RegisterDefaultEndpoints(serviceName, version string) {
	s.engine.GET("/health", endpoint.Health(serviceName, version))
}

// NewErrorMetrics creates an error counter on the global meter provider.
func NewErrorMetrics() (*observability.ErrorMetrics, error) {
	return observability.NewErrorMetrics(observability.Meter("errkit/server"))
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": listener.Addr().String(),
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
