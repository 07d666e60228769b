package movie

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/filmotheque/movies-api/internal/api"
)

var _ Repository = (*PostgresMovieRepo)(nil)

// Repository defines the contract for movie and favorite persistence.
type Repository interface {
	CreateMovie(ctx context.Context, req CreateMovieRequest) (*Movie, error)
	// GetMovie returns api.ErrNotFound if the movie doesn't exist.
	GetMovie(ctx context.Context, movieID int64) (*Movie, error)
	ListMovies(ctx context.Context) ([]Movie, error)
	// UpdateMovie applies a partial patch, refreshes updated_at and returns
	// the full record. Returns api.ErrNotFound if the movie doesn't exist.
	UpdateMovie(ctx context.Context, movieID int64, params UpdateMovieParams) (*Movie, error)
	// DeleteMovie is idempotent; deleting a missing movie is not an error.
	DeleteMovie(ctx context.Context, movieID int64) error
	MovieExists(ctx context.Context, movieID int64) (bool, error)

	// AddFavorite returns api.ErrConflict when the (userID, movieID) pair
	// already exists; the unique constraint is the backstop under races.
	AddFavorite(ctx context.Context, userID, movieID int64) (*Favorite, error)
	// RemoveFavorite returns api.ErrNotFound when no row matched.
	RemoveFavorite(ctx context.Context, userID, movieID int64) error
	FavoriteExists(ctx context.Context, userID, movieID int64) (bool, error)
	// ListFavoriteMovies returns the movies joined through the favorite
	// relation for one user.
	ListFavoriteMovies(ctx context.Context, userID int64) ([]Movie, error)
}

type PostgresMovieRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresMovieRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresMovieRepo {
	return &PostgresMovieRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const movieColumns = "id, title, description, release_date, director, created_at, updated_at"

func scanMovie(row pgx.Row) (*Movie, error) {
	var m Movie
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.ReleaseDate,
		&m.Director, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresMovieRepo) CreateMovie(ctx context.Context, req CreateMovieRequest) (*Movie, error) {
	ctx, span := otel.Tracer("MovieRepo").Start(ctx, "CreateMovie", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "movies"),
	))
	defer span.End()

	query := `
        INSERT INTO movies (title, description, release_date, director)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + movieColumns

	m, err := scanMovie(r.pgpool.QueryRow(ctx, query,
		req.Title, req.Description, req.ReleaseDate.Time, req.Director))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("failed to insert movie: %w", err)
	}

	r.logger.InfoContext(ctx, "Movie created", slog.Int64("movieID", m.ID))
	return m, nil
}

func (r *PostgresMovieRepo) GetMovie(ctx context.Context, movieID int64) (*Movie, error) {
	ctx, span := otel.Tracer("MovieRepo").Start(ctx, "GetMovie", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "movies"),
	))
	defer span.End()

	m, err := scanMovie(r.pgpool.QueryRow(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id = $1", movieID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("movie not found: %w", api.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query movie: %w", err)
	}
	return m, nil
}

func (r *PostgresMovieRepo) ListMovies(ctx context.Context) ([]Movie, error) {
	ctx, span := otel.Tracer("MovieRepo").Start(ctx, "ListMovies", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "movies"),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY id")
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie row: %w", err)
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movie rows: %w", err)
	}
	return movies, nil
}

func (r *PostgresMovieRepo) UpdateMovie(ctx context.Context, movieID int64, params UpdateMovieParams) (*Movie, error) {
	ctx, span := otel.Tracer("MovieRepo").Start(ctx, "UpdateMovie", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "movies"),
	))
	defer span.End()

	var setClauses []string
	var args []interface{}
	argID := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if params.Title != nil {
		addClause("title", *params.Title)
	}
	if params.Description != nil {
		addClause("description", *params.Description)
	}
	if params.ReleaseDate != nil {
		addClause("release_date", params.ReleaseDate.Time)
	}
	if params.Director != nil {
		addClause("director", *params.Director)
	}
	// updated_at is refreshed on every patch, even an empty one.
	addClause("updated_at", time.Now())

	args = append(args, movieID)
	query := fmt.Sprintf("UPDATE movies SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, movieColumns)

	m, err := scanMovie(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Movie not found")
			return nil, fmt.Errorf("movie not found for update: %w", api.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}

	r.logger.InfoContext(ctx, "Movie updated", slog.Int64("movieID", movieID))
	return m, nil
}

func (r *PostgresMovieRepo) DeleteMovie(ctx context.Context, movieID int64) error {
	ctx, span := otel.Tracer("MovieRepo").Start(ctx, "DeleteMovie", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "movies"),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, "DELETE FROM movies WHERE id = $1", movieID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	// Favorites cascade via the foreign key; a zero row count is a no-op.
	r.logger.InfoContext(ctx, "Movie deleted",
		slog.Int64("movieID", movieID), slog.Int64("rows_affected", tag.RowsAffected()))
	return nil
}

func (r *PostgresMovieRepo) MovieExists(ctx context.Context, movieID int64) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)", movieID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check movie existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresMovieRepo) AddFavorite(ctx context.Context, userID, movieID int64) (*Favorite, error) {
	ctx, span := otel.Tracer("MovieRepo").Start(ctx, "AddFavorite", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "favorites"),
	))
	defer span.End()

	query := `
        INSERT INTO favorites (user_id, movie_id)
        VALUES ($1, $2)
        RETURNING id, user_id, movie_id, created_at`

	var f Favorite
	err := r.pgpool.QueryRow(ctx, query, userID, movieID).
		Scan(&f.ID, &f.UserID, &f.MovieID, &f.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			span.SetStatus(codes.Error, "Duplicate favorite")
			return nil, fmt.Errorf("movie already in favorites: %w", api.ErrConflict)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to insert favorite: %w", err)
	}

	r.logger.InfoContext(ctx, "Favorite added",
		slog.Int64("userID", userID), slog.Int64("movieID", movieID), slog.Int64("favoriteID", f.ID))
	return &f, nil
}

func (r *PostgresMovieRepo) RemoveFavorite(ctx context.Context, userID, movieID int64) error {
	ctx, span := otel.Tracer("MovieRepo").Start(ctx, "RemoveFavorite", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "favorites"),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		"DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2", userID, movieID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movie not in favorites: %w", api.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "Favorite removed",
		slog.Int64("userID", userID), slog.Int64("movieID", movieID))
	return nil
}

func (r *PostgresMovieRepo) FavoriteExists(ctx context.Context, userID, movieID int64) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND movie_id = $2)",
		userID, movieID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresMovieRepo) ListFavoriteMovies(ctx context.Context, userID int64) ([]Movie, error) {
	ctx, span := otel.Tracer("MovieRepo").Start(ctx, "ListFavoriteMovies", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "favorites, movies"),
	))
	defer span.End()

	query := `
        SELECT m.id, m.title, m.description, m.release_date, m.director, m.created_at, m.updated_at
        FROM movies m
        INNER JOIN favorites f ON m.id = f.movie_id
        WHERE f.user_id = $1
        ORDER BY f.created_at`

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query favorite movies: %w", err)
	}
	defer rows.Close()

	var movies []Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite movie row: %w", err)
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite movie rows: %w", err)
	}

	r.logger.InfoContext(ctx, "Favorite movies retrieved",
		slog.Int64("userID", userID), slog.Int("count", len(movies)))
	return movies, nil
}
