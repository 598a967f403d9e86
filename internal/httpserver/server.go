// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the DoCombos backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Rooms (optional auth): create/list rooms and the per-room websocket.
//   - Results: recent matches and the leaderboard.
//   - Auth + profile endpoints: /auth/*, /stats/me.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The websocket route sits outside the timeout group; a match outlives
//     any request deadline.
//   - Room loops run on the server's base context, not the request context
//     that created them.

package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/docombos/docombos/apps/go-server/internal/game"
	"github.com/docombos/docombos/apps/go-server/internal/results"
	"github.com/docombos/docombos/apps/go-server/internal/session"
	"github.com/docombos/docombos/apps/go-server/internal/store"
)

// Config carries the match rules and optional collaborators.
type Config struct {
	Rules     game.Rules
	Publisher session.Publisher // nil disables the NATS mirror
	// RoomIdleTimeout closes rooms nobody joins; zero keeps the session default.
	RoomIdleTimeout time.Duration
}

// Server bundles router, live room registry, and DB handle.
type Server struct {
	r        *chi.Mux
	store    store.Store
	db       *sql.DB
	results  *results.Store
	cfg      Config
	upgrader websocket.Upgrader
	baseCtx  context.Context
	cancel   context.CancelFunc
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, cfg Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		db:      db,
		results: results.NewStore(db),
		cfg:     cfg,
		baseCtx: ctx,
		cancel:  cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(corsFromEnv)     // credentials-friendly CORS

	// realtime: no handler timeout
	s.r.With(s.withOptionalAuth()).Get("/rooms/{id}/ws", s.handleRoomWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"docombos-go","endpoints":["/health","POST /rooms","GET /rooms","/rooms/{id}/ws","/results/*","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		// Rooms: optional auth, guests can play
		s.mountRooms(r.With(s.withOptionalAuth()))

		// Finished matches
		s.mountResults(r)

		// Auth + profile (require auth)
		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Handler exposes the router for an external http.Server.
func (s *Server) Handler() http.Handler { return s.r }

// Shutdown stops every room loop.
func (s *Server) Shutdown() { s.cancel() }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := clientOrigin()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientOrigin() string { return getEnv("CLIENT_ORIGIN", "http://localhost:5173") }

// checkOrigin admits non-browser clients and the configured browser origin.
func checkOrigin(r *http.Request) bool {
	o := r.Header.Get("Origin")
	return o == "" || o == clientOrigin()
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
