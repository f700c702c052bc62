package http

import (
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"slidecast/app/internal/deck"
	"slidecast/app/internal/render"
)

// Options configures the HTTP server wiring.
type Options struct {
	DeckService deck.Service
	Renderer    *render.Renderer
	Database    *gorm.DB
	Logger      *logrus.Logger
	SentryHub   *sentry.Hub
	RateLimiter RateLimiterSettings
}

// RateLimiterSettings configures the HTTP rate limiter behaviour. Zero
// values fall back to defaults; negative values disable limiting.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server wires the HTTP transport layer via Huma and templ components.
type Server struct {
	api         huma.API
	mux         *stdhttp.ServeMux
	decks       deck.Service
	renderer    *render.Renderer
	logger      *logrus.Logger
	sentry      *sentry.Hub
	db          *gorm.DB
	rateLimiter *RateLimiter
	hub         *Hub
}

// NewServer constructs the HTTP server and starts the websocket hub.
func NewServer(opts Options) (*Server, error) {
	if opts.DeckService == nil {
		return nil, eris.New("deck service is required")
	}
	if opts.Renderer == nil {
		return nil, eris.New("slide renderer is required")
	}
	if opts.Database == nil {
		return nil, eris.New("database is required")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("Slidecast", "1.0.0")

	api := humago.New(mux, config)

	settings := opts.RateLimiter
	if settings.RequestsPerSecond == 0 {
		settings.RequestsPerSecond = 20
	}
	if settings.Burst == 0 {
		settings.Burst = 40
	}
	if settings.ClientTTL == 0 {
		settings.ClientTTL = 10 * time.Minute
	}

	srv := &Server{
		api:         api,
		mux:         mux,
		decks:       opts.DeckService,
		renderer:    opts.Renderer,
		logger:      opts.Logger,
		sentry:      opts.SentryHub,
		db:          opts.Database,
		rateLimiter: NewRateLimiter(settings.RequestsPerSecond, settings.Burst, settings.ClientTTL),
		hub:         NewHub(opts.DeckService, opts.Logger),
	}

	srv.registerMiddlewares()
	srv.registerRoutes()

	go srv.hub.Run()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops the websocket hub and disconnects viewers.
func (s *Server) Close() {
	s.hub.Close()
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /static/slidecast.css", stylesheetHandler)
	s.mux.Handle("GET /ws", s.hub)

	s.registerHomeRoute()
	s.registerSlideRoute()
	s.registerNextRoute()
	s.registerPrevRoute()
	s.registerOverviewRoute()
	s.registerExportRoute()
	s.registerReloadRoute()
	s.registerHealthRoute()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
