package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"todolist/config"
	"todolist/infras/database"
	"todolist/infras/kafka"
	"todolist/infras/otel"
	"todolist/shared/constant"
	"todolist/transport/http/middleware"
	"todolist/transport/http/response"
	"todolist/transport/http/router"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "todolist/docs" // swagger docs
)

type ServerState int32

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

const readHeaderTimeout = 10 * time.Second

type HTTP struct {
	Config     *config.Config
	Router     router.Router
	Middleware middleware.AppMiddleware
	Metrics    *middleware.Metrics

	otel   otel.Otel
	events kafka.Client
	db     *database.Connection

	state  atomic.Int32
	once   sync.Once
	mux    *chi.Mux
	server *http.Server
}

func New(
	cfg *config.Config,
	r router.Router,
	appMiddleware middleware.AppMiddleware,
	metrics *middleware.Metrics,
	otl otel.Otel,
	events kafka.Client,
	db *database.Connection,
) *HTTP {
	return &HTTP{
		Config:     cfg,
		Router:     r,
		Middleware: appMiddleware,
		Metrics:    metrics,
		otel:       otl,
		events:     events,
		db:         db,
	}
}

// State reports where the server is in its shutdown sequence.
func (h *HTTP) State() ServerState {
	return ServerState(h.state.Load())
}

func (h *HTTP) setState(state ServerState) {
	h.state.Store(int32(state))
}

// Serve listens until SIGINT or SIGTERM and then shuts down gracefully.
func (h *HTTP) Serve() {
	h.setup()

	host := h.Config.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}

	h.server = &http.Server{
		Addr:              net.JoinHostPort(host, h.Config.Server.Port),
		Handler:           h.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})

	go func() {
		defer close(done)

		<-signals
		h.shutdown()
	}()

	log.Info().Str("addr", h.server.Addr).Msg("Starting up HTTP server.")

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}

	<-done
}

// ServeHTTP serves a single request, for serverless entry points.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setup()
	h.mux.ServeHTTP(w, r)
}

func (h *HTTP) setup() {
	h.once.Do(func() {
		h.setupRoutes()
		h.setState(ServerStateReady)
	})
}

func (h *HTTP) setupRoutes() {
	h.mux = chi.NewRouter()

	h.mux.Use(
		h.Middleware.RequestID,
		chiMiddleware.Recoverer,
		h.Middleware.Logging,
		h.Middleware.Metrics,
		h.Middleware.Tracing,
	)

	if corsConfig := h.Config.App.CORS; corsConfig.Enable {
		h.mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsConfig.AllowedOrigins,
			AllowedMethods:   corsConfig.AllowedMethods,
			AllowedHeaders:   corsConfig.AllowedHeaders,
			ExposedHeaders:   []string{constant.RequestHeaderRequestID},
			AllowCredentials: corsConfig.AllowCredentials,
			MaxAge:           corsConfig.MaxAgeSeconds,
		}))
	}

	h.mux.Get("/health", h.health)
	h.mux.Handle("/metrics", h.Metrics.Handler())
	h.mux.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	h.mux.Group(func(r chi.Router) {
		r.Use(h.Middleware.RateLimit())
		h.Router.SetupRoutes(r)
	})
}

func (h *HTTP) health(w http.ResponseWriter, _ *http.Request) {
	switch h.State() {
	case ServerStateReady:
		response.WithMessage(w, http.StatusOK, constant.ResponseHealthy)
	case ServerStateInGracePeriod:
		response.WithPreparingShutdown(w)
	default:
		response.WithUnhealthy(w)
	}
}

// shutdown reports unhealthy during the grace period so load balancers stop routing,
// then drains in-flight requests within the cleanup period and releases resources.
func (h *HTTP) shutdown() {
	shutdownConfig := h.Config.Server.Shutdown

	if h.Config.Server.Env != constant.ServerEnvDevelopment {
		log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Received SIGTERM. Entering grace period.")

		h.setState(ServerStateInGracePeriod)
		time.Sleep(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second)
	} else {
		log.Warn().Msg("Received SIGTERM. Shutting down now.")
	}

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")

	h.setState(ServerStateInCleanupPeriod)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownConfig.CleanupPeriodSeconds)*time.Second)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to drain HTTP server")
	}

	h.release(ctx)

	log.Info().Msg("Cleaning up completed. Shutting down now.")
}

func (h *HTTP) release(ctx context.Context) {
	if h.events != nil {
		if err := h.events.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka writer")
		}
	}

	if h.otel != nil {
		if err := h.otel.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to flush traces")
		}
	}

	if h.db != nil {
		h.db.Close()
	}
}
