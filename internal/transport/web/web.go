package web

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/avstrong/resort/internal/auth"
	"github.com/avstrong/resort/internal/boost"
	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/inventory"
	"github.com/avstrong/resort/internal/logger"
	"github.com/avstrong/resort/internal/metrics"
	"github.com/avstrong/resort/internal/voucher"
	"github.com/avstrong/resort/internal/wizard"
)

var ErrPanic = errors.New("panic in handler")

type Server struct {
	srv     *http.Server
	router  *http.ServeMux
	handler http.Handler
	l       *logger.Logger
	conf    Conf
	deps    Deps
	limiter *rateLimiter
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
	AllowedOrigins    []string
	// RateLimit is requests per second per client. Zero disables limiting.
	RateLimit float64
	RateBurst int
	Hotel     voucher.Hotel
}

type Deps struct {
	Bookings   *booking.Manager
	Rooms      *inventory.Catalog
	Promos     *boost.Registry
	Wizards    *wizard.Registry
	WizardDeps wizard.Deps
	Auth       *auth.Authenticator
	// Live serves the admin websocket feed.
	Live http.Handler
	// Metrics and MetricsHandler may be nil.
	Metrics        *metrics.Collectors
	MetricsHandler http.Handler
}

func New(ctx context.Context, conf Conf, deps Deps) (*Server, error) {
	mux := http.NewServeMux()

	server := &Server{
		router:  mux,
		l:       conf.L,
		conf:    conf,
		deps:    deps,
		limiter: newRateLimiter(conf.RateLimit, conf.RateBurst),
	}

	server.addRoutes(mux)

	//nolint:exhaustruct
	server.handler = cors.New(cors.Options{
		AllowedOrigins: conf.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(mux)

	//nolint:exhaustruct
	server.srv = &http.Server{
		Addr:              net.JoinHostPort(conf.Host, conf.Port),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           server.handler,
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	return server, nil
}

func (s *Server) Srv() *http.Server {
	return s.srv
}

// Handler is the full middleware-wrapped handler, handy for httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}
