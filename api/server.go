package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/studio-portfolio-backend/config"
	"github.com/rpupo63/studio-portfolio-backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c config.Config, svcs *services.Services, db Pinger) (Server, error) {
	if svcs == nil {
		return Server{}, fmt.Errorf("services are required")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	handler := NewHandler(c, svcs, db, startupTime)

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

// NewHandler builds the routed handler without a listener.
func NewHandler(c config.Config, svcs *services.Services, db Pinger, startupTime time.Time) http.Handler {
	return newRouter(svcs, db, withConfig(c), withStartupTime(startupTime))
}

type router struct {
	config          config.Config
	startupTime     time.Time
	acceptedOrigins []string
	maxUploadBytes  int64
	secureCookie    bool
}

func withConfig(c config.Config) func(*router) {
	return func(r *router) {
		r.config = c
		r.acceptedOrigins = config.GetStrings(c, "ACCEPTED_ORIGINS")
		// Covers a cover plus a full gallery at the per-image limit.
		r.maxUploadBytes = int64(config.GetInt(c, "MAX_REQUEST_MB", 64)) << 20
		r.secureCookie = config.GetBool(c, "COOKIE_SECURE", true)
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(svcs *services.Services, db Pinger, opts ...func(*router)) *chi.Mux {
	r := router{maxUploadBytes: 64 << 20, secureCookie: true}
	for _, opt := range opts {
		opt(&r)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)

	chiRouter.Use(CORSCheckMiddleware(r.acceptedOrigins))
	chiRouter.Use(corsMiddleware(r.acceptedOrigins))

	handlers := initializeHandlers(svcs, db, r)
	authMiddleware := newAuthMiddleware(svcs.Auth)

	setupRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
