// package server contains the router, middleware and handlers for the stub player service
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own a set of routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// ServerOpts configures a stub player [Server].
type ServerOpts struct {
	Addr     string
	Username string // optional basic auth
	Password string
	Player   *Player // defaults to [NewPlayer]
	Logger   *log.Logger
}

// Server serves a [Player] over the player HTTP API.
type Server struct {
	addr   string
	player *Player
	router *BasicRouter
	logger *log.Logger
}

// NewServer wires the player handlers behind logging and auth middleware.
func NewServer(opts ServerOpts) *Server {
	if opts.Player == nil {
		opts.Player = NewPlayer()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}
	logger := shared.WithLogger(opts.Logger, "component", "server")

	router := NewBasicRouter()
	router.Use(LoggingMiddleware(logger), BasicAuthMiddleware(opts.Username, opts.Password))
	router.Handler(NewPlayerHandler(opts.Player, logger))
	router.Handle(http.MethodGet, "/api/query/updates", NewUpdatesHandler(opts.Player, logger))

	return &Server{addr: opts.Addr, player: opts.Player, router: router, logger: logger}
}

// Player returns the served player.
func (s *Server) Player() *Player {
	return s.player
}

// Router returns the server's router.
func (s *Server) Router() *BasicRouter {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
//
// Open update streams end when their request contexts are cancelled by the shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("stub player listening", "addr", ln.Addr().String(), "routes", s.router.Patterns())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("stub player stopped")
	return nil
}
