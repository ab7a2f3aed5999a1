package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/threatwatch/internal/globaltime"
	"horse.fit/threatwatch/internal/review"
)

// ReviewStore loads and persists the review queue and dedup log.
type ReviewStore interface {
	Load() (*review.State, error)
	Update(fn func(*review.State) error) error
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// Server exposes the review queue over HTTP. Requests that change state are
// serialised so two reviewers in one process never interleave a
// load-modify-save cycle.
type Server struct {
	store  ReviewStore
	logger zerolog.Logger
	opts   Options
	mu     sync.Mutex
}

type reviewListResponse struct {
	Items []review.Entry `json:"items"`
	Count int            `json:"count"`
}

func NewServer(store ReviewStore, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		store:  store,
		logger: logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  origins,
		},
	}
}

// Handler builds the Echo router with middleware and API routes.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := s.logger.Info()
			msg := "http request"
			if v.Error != nil {
				event = s.logger.Error().Err(v.Error)
				msg = "http request failed"
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg(msg)
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/review", s.handleReviewList)
	api.POST("/review/:match_id/accept", s.handleAccept)
	api.POST("/review/:match_id/reject", s.handleReject)
	api.GET("/stats", s.handleStats)

	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("review api started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("review api stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "threatwatch",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleReviewList(c echo.Context) error {
	s.mu.Lock()
	state, err := s.store.Load()
	s.mu.Unlock()
	if err != nil {
		s.logger.Error().Err(err).Msg("load review queue failed")
		return internalError(c, "Failed to load review queue")
	}

	pending := state.Pending()
	return success(c, reviewListResponse{Items: pending, Count: len(pending)})
}

func (s *Server) handleStats(c echo.Context) error {
	s.mu.Lock()
	state, err := s.store.Load()
	s.mu.Unlock()
	if err != nil {
		s.logger.Error().Err(err).Msg("load dedup state failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, state.Stats())
}

func (s *Server) handleAccept(c echo.Context) error {
	return s.resolve(c, (*review.State).Accept)
}

func (s *Server) handleReject(c echo.Context) error {
	return s.resolve(c, (*review.State).Reject)
}

type transition func(state *review.State, matchID int, now time.Time) (review.Entry, error)

func (s *Server) resolve(c echo.Context, apply transition) error {
	matchID, err := parseMatchID(c.Param("match_id"))
	if err != nil {
		return failValidation(c, map[string]string{"match_id": err.Error()})
	}

	var resolved review.Entry
	s.mu.Lock()
	err = s.store.Update(func(state *review.State) error {
		entry, applyErr := apply(state, matchID, globaltime.UTC())
		if applyErr != nil {
			return applyErr
		}
		resolved = entry
		return nil
	})
	s.mu.Unlock()

	var notFound *review.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return failNotFound(c, notFound.Error())
	case err != nil:
		s.logger.Error().Err(err).Int("match_id", matchID).Msg("resolve review entry failed")
		return internalError(c, "Failed to update review queue")
	}

	s.logger.Info().
		Int("match_id", resolved.MatchID).
		Str("decision", string(resolved.Decision)).
		Msg("review entry resolved")
	return success(c, resolved)
}

func parseMatchID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return id, nil
}
