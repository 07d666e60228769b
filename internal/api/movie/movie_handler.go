package movie

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/filmotheque/movies-api/internal/api"
	"github.com/filmotheque/movies-api/internal/api/auth"
)

type HandlerImpl struct {
	movieService Service
	logger       *slog.Logger
}

func NewHandlerImpl(movieService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		movieService: movieService,
		logger:       logger,
	}
}

// CreateMovie handles POST /movie
func (h *HandlerImpl) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MovieHandler").Start(r.Context(), "CreateMovie", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/movie"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateMovie"))

	var req CreateMovieRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		l.WarnContext(ctx, "Invalid movie payload", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.movieService.Create(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create movie", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create movie failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to create movie")
		return
	}

	span.SetAttributes(attribute.Int64("movie.id", m.ID))
	span.SetStatus(codes.Ok, "Movie created")
	api.WriteJSONResponse(w, r, http.StatusOK, m)
}

// GetMovie handles GET /movie/{id}
func (h *HandlerImpl) GetMovie(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MovieHandler").Start(r.Context(), "GetMovie", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/movie/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetMovie"))

	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid movie ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid movie ID")
		return
	}
	span.SetAttributes(attribute.Int64("movie.id", movieID))

	m, err := h.movieService.Get(ctx, movieID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "Movie not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Movie not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get movie", slog.Int64("movieID", movieID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Get movie failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to get movie")
		return
	}

	span.SetStatus(codes.Ok, "Movie retrieved")
	api.WriteJSONResponse(w, r, http.StatusOK, m)
}

// ListMovies handles GET /movies
func (h *HandlerImpl) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MovieHandler").Start(r.Context(), "ListMovies", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/movies"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListMovies"))

	movies, err := h.movieService.List(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list movies", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "List movies failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to list movies")
		return
	}
	if movies == nil {
		movies = []Movie{}
	}

	span.SetAttributes(attribute.Int("movie.count", len(movies)))
	span.SetStatus(codes.Ok, "Movies listed")
	api.WriteJSONResponse(w, r, http.StatusOK, movies)
}

// UpdateMovie handles PATCH /movie/{id}
func (h *HandlerImpl) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MovieHandler").Start(r.Context(), "UpdateMovie", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/movie/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateMovie"))

	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid movie ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid movie ID")
		return
	}
	span.SetAttributes(attribute.Int64("movie.id", movieID))

	var params UpdateMovieParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := params.Validate(); err != nil {
		l.WarnContext(ctx, "Invalid movie patch", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.movieService.Update(ctx, movieID, params)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "Movie not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Movie not found")
			return
		}
		l.ErrorContext(ctx, "Failed to update movie", slog.Int64("movieID", movieID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update movie failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to update movie")
		return
	}

	span.SetStatus(codes.Ok, "Movie updated")
	api.WriteJSONResponse(w, r, http.StatusOK, m)
}

// DeleteMovie handles DELETE /movie/{id}
func (h *HandlerImpl) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MovieHandler").Start(r.Context(), "DeleteMovie", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/movie/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteMovie"))

	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid movie ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid movie ID")
		return
	}
	span.SetAttributes(attribute.Int64("movie.id", movieID))

	if err := h.movieService.Delete(ctx, movieID); err != nil {
		l.ErrorContext(ctx, "Failed to delete movie", slog.Int64("movieID", movieID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete movie failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to delete movie")
		return
	}

	span.SetStatus(codes.Ok, "Movie deleted")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// AddToFavorites handles POST /movies/favorites/{movieId}
func (h *HandlerImpl) AddToFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MovieHandler").Start(r.Context(), "AddToFavorites", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/movies/favorites/{movieId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "AddToFavorites"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "User ID missing from context")
		span.SetStatus(codes.Error, "Unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieId"), 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid movie ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid movie ID")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.Int64("movie.id", movieID))

	if _, err := h.movieService.AddToFavorites(ctx, userID, movieID); err != nil {
		switch {
		case errors.Is(err, api.ErrNotFound):
			span.SetStatus(codes.Error, "Not found")
			api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, api.ErrConflict):
			span.SetStatus(codes.Error, "Already favorited")
			api.ErrorResponse(w, r, http.StatusConflict, "Movie already in favorites")
		default:
			l.ErrorContext(ctx, "Failed to add favorite",
				slog.Int64("userID", userID), slog.Int64("movieID", movieID), slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Add favorite failed")
			api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to add movie to favorites")
		}
		return
	}

	span.SetStatus(codes.Ok, "Favorite added")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Message: "Movie added to favorites",
	})
}

// RemoveFromFavorites handles DELETE /movies/favorites/{movieId}
func (h *HandlerImpl) RemoveFromFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MovieHandler").Start(r.Context(), "RemoveFromFavorites", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/movies/favorites/{movieId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "RemoveFromFavorites"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "User ID missing from context")
		span.SetStatus(codes.Error, "Unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieId"), 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid movie ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid movie ID")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.Int64("movie.id", movieID))

	if err := h.movieService.RemoveFromFavorites(ctx, userID, movieID); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "Favorite not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Movie not in favorites")
			return
		}
		l.ErrorContext(ctx, "Failed to remove favorite",
			slog.Int64("userID", userID), slog.Int64("movieID", movieID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Remove favorite failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to remove movie from favorites")
		return
	}

	span.SetStatus(codes.Ok, "Favorite removed")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Message: "Movie removed from favorites",
	})
}

// ListFavorites handles GET /movies/favorites
func (h *HandlerImpl) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MovieHandler").Start(r.Context(), "ListFavorites", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/movies/favorites"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListFavorites"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "User ID missing from context")
		span.SetStatus(codes.Error, "Unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", userID))

	movies, err := h.movieService.ListFavorites(ctx, userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "User not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to list favorites", slog.Int64("userID", userID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "List favorites failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to list favorites")
		return
	}
	if movies == nil {
		movies = []Movie{}
	}

	span.SetAttributes(attribute.Int("movie.count", len(movies)))
	span.SetStatus(codes.Ok, "Favorites listed")
	api.WriteJSONResponse(w, r, http.StatusOK, movies)
}

// ExportMovies handles POST /movies/export
func (h *HandlerImpl) ExportMovies(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MovieHandler").Start(r.Context(), "ExportMovies", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/movies/export"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ExportMovies"))

	recipient, ok := auth.GetUserMailFromContext(ctx)
	if !ok || recipient == "" {
		l.ErrorContext(ctx, "Recipient mail missing from context")
		span.SetStatus(codes.Error, "Unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.movieService.ExportMoviesToCSV(ctx, recipient); err != nil {
		l.ErrorContext(ctx, "Failed to start CSV export", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Export failed")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to export movies")
		return
	}

	span.SetStatus(codes.Ok, "Export dispatched")
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{
		Success: true,
		Message: "Export started. You will receive an email shortly.",
	})
}
