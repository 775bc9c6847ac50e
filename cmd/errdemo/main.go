// Command errdemo serves a small API that exercises every error path: plain
// errors carrying a status, classified faults, validation failures, panics
// and the 401/403 authentication split.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nisix/errkit/auth"
	"github.com/nisix/errkit/config"
	"github.com/nisix/errkit/errors"
	"github.com/nisix/errkit/logger"
	"github.com/nisix/errkit/observability"
	"github.com/nisix/errkit/server"
	"github.com/nisix/errkit/server/middleware"
	"github.com/nisix/errkit/validation"
)

type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server               server.Config       `yaml:"server" mapstructure:"server"`
	Auth                 auth.Config         `yaml:"auth" mapstructure:"auth"`
	Observability        observabilityConfig `yaml:"observability" mapstructure:"observability"`
}

type observabilityConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// statusError is an unclassified error that still carries a status.
type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }
func (e *statusError) Status() int   { return e.status }

type createUserRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=reader admin"`
}

func main() {
	if err := run(); err != nil {
		logger.GetGlobalLogger().Fatal("errdemo failed", map[string]interface{}{logger.FieldError: err.Error()})
	}
}

// devSecret signs tokens outside production when no auth.secret is configured.
const devSecret = "errdemo-dev-secret"

func run() error {
	cfg := appConfig{}
	if err := config.LoadConfig("errdemo", &cfg); err != nil {
		return err
	}
	if err := prepareConfig(&cfg); err != nil {
		return err
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := setupTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	metrics, err := server.NewErrorMetrics()
	if err != nil {
		return err
	}

	srv, err := newServer(cfg, log, metrics)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(stopCtx)
}

// prepareConfig applies defaults and validates cfg. The development signing
// secret is only substituted outside production.
func prepareConfig(cfg *appConfig) error {
	if cfg.Name == "" {
		cfg.Name = "errdemo"
	}
	cfg.ApplyDefaults()
	cfg.Server.ApplyDefaults()

	if cfg.Auth.Secret == "" {
		if cfg.IsProduction() || config.IsProduction() {
			return fmt.Errorf("auth.secret is required in production")
		}
		logger.Warn("auth.secret not set, using development secret")
		cfg.Auth.Secret = devSecret
	}
	if cfg.Server.Errors.Debug == nil {
		cfg.Server.Errors.Debug = cfg.Debug
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.Server.Validate()
}

// newServer builds the HTTP server with middleware and demo routes.
func newServer(cfg appConfig, log *logger.Logger, metrics *observability.ErrorMetrics) (*server.Server, error) {
	tokens, err := auth.NewService(cfg.Auth)
	if err != nil {
		return nil, err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(server.ErrorHandlerOptions{
		Production: func() bool { return cfg.IsProduction() || config.IsProduction() },
		Metrics:    metrics,
	})
	srv.RegisterDefaultEndpoints(cfg.Name, cfg.Version)
	registerRoutes(srv.GinEngine(), tokens)
	return srv, nil
}

func setupTelemetry(ctx context.Context, cfg appConfig) (func(), error) {
	if !cfg.Observability.Enabled {
		return func() {}, nil
	}

	tcfg := observability.DefaultTracerConfig(cfg.Name)
	tcfg.ServiceVersion = cfg.Version
	tcfg.Environment = cfg.Environment
	mcfg := observability.DefaultMeterConfig(cfg.Name)
	mcfg.ServiceVersion = cfg.Version
	mcfg.Environment = cfg.Environment
	if cfg.Observability.Endpoint != "" {
		tcfg.Endpoint = cfg.Observability.Endpoint
		mcfg.Endpoint = cfg.Observability.Endpoint
	}

	tp, err := observability.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, err
	}
	mp, err := observability.InitMeter(ctx, mcfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
		_ = mp.Shutdown(shutdownCtx)
	}, nil
}

func registerRoutes(r *gin.Engine, tokens *auth.Service) {
	r.GET("/error", func(c *gin.Context) {
		server.RespondWithError(c, &statusError{status: http.StatusBadRequest, msg: "Bad request"})
	})

	// /classified/:code?status=455&key=value raises a fault with that code,
	// an optional explicit status and the remaining query as metadata.
	r.GET("/classified/:code", func(c *gin.Context) {
		var opts []errors.Option
		if s := c.Query("status"); s != "" {
			status, err := strconv.Atoi(s)
			if err != nil {
				server.RespondWithError(c, errors.BadRequest(map[string]any{"status": "must be an integer"}))
				return
			}
			opts = append(opts, errors.WithStatus(status))
		}
		meta := map[string]any{}
		for k, v := range c.Request.URL.Query() {
			if k != "status" {
				meta[k] = v[0]
			}
		}
		if len(meta) > 0 {
			opts = append(opts, errors.WithMetadata(meta))
		}
		server.RespondWithError(c, errors.New(errors.ErrorCode(c.Param("code")), opts...))
	})

	r.GET("/panic", func(*gin.Context) {
		panic("deliberate panic")
	})

	r.POST("/users", func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			server.RespondWithError(c, errors.New(errors.ErrCodeBadRequest, errors.WithCause(err)))
			return
		}
		if err := validation.Struct(req); err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondCreated(c, req)
	})

	r.POST("/token", func(c *gin.Context) {
		v := validation.New().Required("subject", c.PostForm("subject"))
		v.OneOf("role", c.PostForm("role"), []string{"reader", "admin"})
		if err := v.Validate(); err != nil {
			server.RespondWithError(c, err)
			return
		}
		var roles []string
		if role := c.PostForm("role"); role != "" {
			roles = append(roles, role)
		}
		token, err := tokens.Issue(c.PostForm("subject"), roles...)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, gin.H{"token": token})
	})

	admin := r.Group("/admin",
		middleware.Auth(middleware.AuthConfig{Verifier: tokens}),
		middleware.RequireRole("admin"),
	)
	admin.GET("/stats", func(c *gin.Context) {
		server.RespondOK(c, gin.H{
			"subject": middleware.ClaimsFrom(c).Subject,
			"pid":     os.Getpid(),
		})
	})
}
