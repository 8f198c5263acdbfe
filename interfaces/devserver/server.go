// Package devserver is an in-memory reference implementation of the
// KingFace HTTP contract. It backs the integration tests and local
// development; it is not a production server.
package devserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"kingface-client/pkg/ratelimit"
)

// Options configures the dev server
type Options struct {
	JWTSecret  string
	CORSOrigin string
}

// Server serves the KingFace API from memory
type Server struct {
	store   *Store
	tokens  *tokenSigner
	logger  *zap.Logger
	options Options
}

// New creates a dev server
func New(opts Options, logger *zap.Logger) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "development-secret-change-in-production"
	}
	return &Server{
		store:   NewStore(),
		tokens:  newTokenSigner(opts.JWTSecret),
		logger:  logger,
		options: opts,
	}
}

// Store exposes the backing store, mainly for test seeding and assertions
func (s *Server) Store() *Store {
	return s.store
}

// Handler builds the HTTP handler with the full middleware chain
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))

	if s.options.CORSOrigin != "" {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{s.options.CORSOrigin},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			// login endpoints get a tighter budget than the rest
			r.Use(rateLimit(ratelimit.NewTokenBucketLimiter(30, time.Second)))
			r.Get("/challenge", s.handleChallenge)
			r.Post("/connect", s.handleConnect)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/profile", s.handleProfile)
		})

		r.Route("/users", func(r chi.Router) {
			// userRef is a username for the profile route and a user id for
			// the posts route, matching the original API
			r.Get("/{userRef}", s.handleUserByUsername)
			r.Get("/{userRef}/posts", s.handleUserPosts)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/feed", s.handleFeed)
			r.Get("/{postID}", s.handleGetPost)
			r.Get("/{postID}/likes", s.handlePostLikes)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Post("/", s.handleCreatePost)
				r.Post("/like", s.handleLike)
			})
		})

		r.Get("/stats", s.handleStats)
	})

	return router
}
