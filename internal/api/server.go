// Package api serves quotes and their screenshots over a read-only HTTP API.
package api

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dealmungchi/fuaas/logger"
	"github.com/dealmungchi/fuaas/services/blob"
	"github.com/dealmungchi/fuaas/services/store"
)

// QuoteStore is the read side of the relational store
type QuoteStore interface {
	CountQuotes(ctx context.Context) (int64, error)
	QuoteByID(ctx context.Context, id int64) (*store.Quote, error)
	HasImage(ctx context.Context, id int64) (bool, error)
	RandomImageID(ctx context.Context) (int64, error)
}

// QuoteResponse is the public shape of a quote
type QuoteResponse struct {
	Quote     string `json:"quote"`
	SourceURL string `json:"source_url"`
}

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	msgNoQuotes       = "No quotes found"
	msgQuoteNotFound  = "Quote not found"
	msgNoImages       = "No images available"
	msgImageNotFound  = "Image not found"
	msgImageFileGone  = "Image file not found"
	msgNotFound       = "Not found"
	msgInternalError  = "Internal server error"
	imageCacheControl = "public, max-age=86400"
)

var idRegex = regexp.MustCompile(`^\d+$`)

// Server is the lookup service
type Server struct {
	echo   *echo.Echo
	quotes QuoteStore
	images blob.Store
	log    *logger.Logger
}

// NewServer creates the lookup service over quotes and images
func NewServer(quotes QuoteStore, images blob.Store) *Server {
	s := &Server{
		echo:   echo.New(),
		quotes: quotes,
		images: images,
		log:    logger.ForServer(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.echo.Pre(middleware.RemoveTrailingSlash())
	s.echo.Pre(corsMiddleware)
	s.echo.Use(s.requestLogger())
	s.echo.Use(middleware.Recover())

	s.setRoutes()
	return s
}

func (s *Server) setRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	wisdom := s.echo.Group("/api/wisdom")
	wisdom.GET("", s.randomQuote)
	wisdom.GET("/:id", s.quoteByID)
	wisdom.GET("/img", s.randomImage)
	wisdom.GET("/img/:id", s.imageByID)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("Starting lookup service")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// corsMiddleware sets permissive CORS headers on every response and answers preflights
func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set(echo.HeaderAccessControlAllowOrigin, "*")
		h.Set(echo.HeaderAccessControlAllowMethods, "GET, OPTIONS")
		h.Set(echo.HeaderAccessControlAllowHeaders, "Content-Type")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusNoContent)
		}
		return next(c)
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		LogStatus:  true,
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := s.log.Info()
			if v.Error != nil {
				event = s.log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("Request")
			return nil
		},
	})
}

// handleError maps routing errors to "Not found" and everything else to a bare 500
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := msgInternalError

	var he *echo.HTTPError
	if errors.As(err, &he) && (he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed) {
		status = http.StatusNotFound
		message = msgNotFound
	} else {
		s.log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("Request failed")
	}

	if err := c.JSON(status, ErrorResponse{Error: message}); err != nil {
		s.log.Error().Err(err).Msg("Failed to write error response")
	}
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// parseID returns the numeric id path parameter. ok is false when the segment is not all
// digits; overflow yields id 0, which matches no row.
func parseID(c echo.Context) (id int64, ok bool) {
	raw := c.Param("id")
	if !idRegex.MatchString(raw) {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, true
	}
	return id, true
}

func (s *Server) randomQuote(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := s.quotes.CountQuotes(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return notFound(c, msgNoQuotes)
	}

	// ids are dense from 1 after a seed load, so a gap shows up as "No quotes found"
	quote, err := s.quotes.QuoteByID(ctx, rand.Int64N(count)+1)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, msgNoQuotes)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(quote))
}

func (s *Server) quoteByID(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return notFound(c, msgNotFound)
	}

	quote, err := s.quotes.QuoteByID(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, msgQuoteNotFound)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(quote))
}

func (s *Server) randomImage(c echo.Context) error {
	id, err := s.quotes.RandomImageID(c.Request().Context())
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, msgNoImages)
	}
	if err != nil {
		return err
	}
	return s.serveImage(c, id)
}

func (s *Server) imageByID(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return notFound(c, msgNotFound)
	}

	has, err := s.quotes.HasImage(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !has {
		return notFound(c, msgImageNotFound)
	}
	return s.serveImage(c, id)
}

func (s *Server) serveImage(c echo.Context, id int64) error {
	data, err := s.images.Get(c.Request().Context(), id)
	if errors.Is(err, blob.ErrNotFound) {
		return notFound(c, msgImageFileGone)
	}
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderCacheControl, imageCacheControl)
	return c.Blob(http.StatusOK, "image/png", data)
}

func toResponse(q *store.Quote) QuoteResponse {
	return QuoteResponse{
		Quote:     q.Quote,
		SourceURL: q.SourceURL,
	}
}
