package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jthomisee/changing-500/internal/auth"
	"github.com/jthomisee/changing-500/internal/push"
	"github.com/jthomisee/changing-500/internal/store"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	router      *chi.Mux
	store       store.Store
	tokens      *auth.TokenManager
	pushService *push.Service  // nil when push is not configured
	notifier    *push.Notifier // nil when push is not configured
}

// Config holds server configuration.
type Config struct {
	AllowedOrigins []string
}

// NewServer creates a new HTTP server.
func NewServer(
	st store.Store,
	tokens *auth.TokenManager,
	pushService *push.Service,
	notifier *push.Notifier,
	cfg Config,
) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		store:       st,
		tokens:      tokens,
		pushService: pushService,
		notifier:    notifier,
	}

	s.setupRoutes(cfg)
	return s
}

func (s *Server) setupRoutes(cfg Config) {
	r := s.router

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Public routes
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(s.tokens, s.store))

		r.Get("/api/me", s.handleMe)

		r.Post("/api/groups", s.handleCreateGroup)
		r.Get("/api/groups", s.handleListGroups)
		r.Get("/api/groups/{groupID}", s.handleGetGroup)
		r.Delete("/api/groups/{groupID}", s.handleDeleteGroup)
		r.Post("/api/groups/{groupID}/members", s.handleAddMember)
		r.Delete("/api/groups/{groupID}/members/{userID}", s.handleRemoveMember)

		r.Post("/api/groups/{groupID}/games", s.handleCreateGame)
		r.Get("/api/groups/{groupID}/games", s.handleListGames)
		r.Get("/api/games/{gameID}", s.handleGetGame)
		r.Put("/api/games/{gameID}", s.handleUpdateGame)
		r.Delete("/api/games/{gameID}", s.handleDeleteGame)
		r.Post("/api/games/{gameID}/rsvp", s.handleRSVP)

		r.Get("/api/groups/{groupID}/standings", s.handleStandings)

		r.Get("/api/push/key", s.handleGetVAPIDPublicKey)
		r.Post("/api/push/subscribe", s.handleSubscribePush)
		r.Delete("/api/push/subscribe", s.handleUnsubscribePush)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// mustUser returns the authenticated user or writes a 401.
func (s *Server) mustUser(w http.ResponseWriter, r *http.Request) *store.User {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		errorJSON(w, http.StatusUnauthorized, "unauthorized")
	}
	return user
}

// requireMember loads the group and verifies the current user belongs to it.
// On failure it writes the error response and returns nil.
func (s *Server) requireMember(w http.ResponseWriter, r *http.Request, groupID string) (*store.User, *store.Group) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		errorJSON(w, http.StatusUnauthorized, "unauthorized")
		return nil, nil
	}

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		serverError(w, err)
		return nil, nil
	}
	if group == nil {
		errorJSON(w, http.StatusNotFound, "group not found")
		return nil, nil
	}

	isMember, err := s.store.IsMember(r.Context(), groupID, user.ID)
	if err != nil {
		serverError(w, err)
		return nil, nil
	}
	if !isMember {
		errorJSON(w, http.StatusForbidden, "not a member of this group")
		return nil, nil
	}

	return user, group
}
