package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/filmotheque/movies-api/internal/api/auth"
	"github.com/filmotheque/movies-api/internal/api/movie"
	"github.com/filmotheque/movies-api/internal/api/user"
)

// Config contains dependencies needed for the router setup
type Config struct {
	UserHandler  *user.HandlerImpl
	MovieHandler *movie.HandlerImpl

	// Authenticate validates the bearer token and loads the caller identity.
	Authenticate func(http.Handler) http.Handler
	// RequireScope builds a middleware rejecting callers without one of the
	// given scopes. Must run after Authenticate.
	RequireScope func(scopes ...string) func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// --- Public routes ---
	r.Group(func(r chi.Router) {
		r.Post("/user", cfg.UserHandler.CreateUser)
		r.Post("/user/login", cfg.UserHandler.Login)
	})

	// --- Authenticated routes ---
	r.Group(func(r chi.Router) {
		r.Use(cfg.Authenticate)

		// Any authenticated user may patch a user record.
		r.Patch("/user/{id}", cfg.UserHandler.UpdateUser)

		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireScope(auth.ScopeAdmin))
			r.Delete("/user/{id}", cfg.UserHandler.DeleteUser)
			r.Post("/movie", cfg.MovieHandler.CreateMovie)
			r.Patch("/movie/{id}", cfg.MovieHandler.UpdateMovie)
			r.Delete("/movie/{id}", cfg.MovieHandler.DeleteMovie)
			r.Post("/movies/export", cfg.MovieHandler.ExportMovies)
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireScope(auth.ScopeAdmin, auth.ScopeUser))
			r.Get("/users", cfg.UserHandler.ListUsers)
			r.Get("/movie/{id}", cfg.MovieHandler.GetMovie)
			r.Get("/movies", cfg.MovieHandler.ListMovies)
			r.Get("/movies/favorites", cfg.MovieHandler.ListFavorites)
			r.Post("/movies/favorites/{movieId}", cfg.MovieHandler.AddToFavorites)
			r.Delete("/movies/favorites/{movieId}", cfg.MovieHandler.RemoveFromFavorites)
		})
	})

	return r
}
