package movie

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/filmotheque/movies-api/app/mail"
	"github.com/filmotheque/movies-api/app/observability/metrics"
	"github.com/filmotheque/movies-api/internal/api"
)

// UserChecker reports whether a user exists. Implemented by the user
// repository and injected so favorites can check referential integrity
// without owning user persistence.
type UserChecker interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

var _ Service = (*ServiceImpl)(nil)

// Service owns movie CRUD side effects, the favorites relation and the
// CSV-export-and-email workflow.
type Service interface {
	Create(ctx context.Context, req CreateMovieRequest) (*Movie, error)
	Get(ctx context.Context, movieID int64) (*Movie, error)
	List(ctx context.Context) ([]Movie, error)
	Update(ctx context.Context, movieID int64, params UpdateMovieParams) (*Movie, error)
	Delete(ctx context.Context, movieID int64) error

	AddToFavorites(ctx context.Context, userID, movieID int64) (*Favorite, error)
	RemoveFromFavorites(ctx context.Context, userID, movieID int64) error
	ListFavorites(ctx context.Context, userID int64) ([]Movie, error)

	// ExportMoviesToCSV serializes all movies and dispatches the mail off
	// the critical path. It returns once the send has been dispatched;
	// delivery failures are logged, never surfaced, never retried.
	ExportMoviesToCSV(ctx context.Context, recipientEmail string) error
}

type ServiceImpl struct {
	repo   Repository
	users  UserChecker
	mailer mail.Mailer
	logger *slog.Logger
}

func NewServiceImpl(repo Repository, users UserChecker, mailer mail.Mailer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, req CreateMovieRequest) (*Movie, error) {
	m, err := s.repo.CreateMovie(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create movie", slog.Any("error", err))
		return nil, err
	}
	return m, nil
}

func (s *ServiceImpl) Get(ctx context.Context, movieID int64) (*Movie, error) {
	return s.repo.GetMovie(ctx, movieID)
}

func (s *ServiceImpl) List(ctx context.Context) ([]Movie, error) {
	movies, err := s.repo.ListMovies(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies", slog.Any("error", err))
		return nil, err
	}
	return movies, nil
}

func (s *ServiceImpl) Update(ctx context.Context, movieID int64, params UpdateMovieParams) (*Movie, error) {
	m, err := s.repo.UpdateMovie(ctx, movieID, params)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update movie",
			slog.Int64("movieID", movieID), slog.Any("error", err))
		return nil, err
	}
	return m, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, movieID int64) error {
	if err := s.repo.DeleteMovie(ctx, movieID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete movie",
			slog.Int64("movieID", movieID), slog.Any("error", err))
		return err
	}
	return nil
}

// AddToFavorites enforces the favorite invariants in order: the user must
// exist, the movie must exist, and the pair must not already be favorited.
// The existence and duplicate checks are pre-condition optimizations; the
// unique constraint in the store decides the winner under concurrent adds.
func (s *ServiceImpl) AddToFavorites(ctx context.Context, userID, movieID int64) (*Favorite, error) {
	userExists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !userExists {
		return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
	}

	movieExists, err := s.repo.MovieExists(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if !movieExists {
		return nil, fmt.Errorf("movie not found: %w", api.ErrNotFound)
	}

	alreadyFavorited, err := s.repo.FavoriteExists(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	if alreadyFavorited {
		metrics.Get().FavoriteConflictsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("movie already in favorites: %w", api.ErrConflict)
	}

	f, err := s.repo.AddFavorite(ctx, userID, movieID)
	if err != nil {
		// The unique constraint caught a duplicate the pre-check missed
		// (a concurrent add landed first). Count it like any other conflict.
		if errors.Is(err, api.ErrConflict) {
			metrics.Get().FavoriteConflictsTotal.Add(ctx, 1)
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to add favorite",
			slog.Int64("userID", userID), slog.Int64("movieID", movieID), slog.Any("error", err))
		return nil, err
	}
	return f, nil
}

func (s *ServiceImpl) RemoveFromFavorites(ctx context.Context, userID, movieID int64) error {
	if err := s.repo.RemoveFavorite(ctx, userID, movieID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove favorite",
			slog.Int64("userID", userID), slog.Int64("movieID", movieID), slog.Any("error", err))
		return err
	}
	return nil
}

func (s *ServiceImpl) ListFavorites(ctx context.Context, userID int64) ([]Movie, error) {
	userExists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !userExists {
		return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
	}

	return s.repo.ListFavoriteMovies(ctx, userID)
}

func (s *ServiceImpl) ExportMoviesToCSV(ctx context.Context, recipientEmail string) error {
	exportID := uuid.New()
	l := s.logger.With(slog.String("exportID", exportID.String()))
	metrics.Get().ExportRequestsTotal.Add(ctx, 1)

	movies, err := s.repo.ListMovies(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch movies for export", slog.Any("error", err))
		return err
	}

	start := time.Now()
	csvContent, err := GenerateCSV(movies)
	if err != nil {
		l.ErrorContext(ctx, "Failed to serialize movies to CSV", slog.Any("error", err))
		return err
	}
	metrics.Get().CsvSerializationSeconds.Record(ctx, time.Since(start).Seconds())

	// Detached from the request; the caller gets its acknowledgement as soon
	// as the send is dispatched.
	sendCtx := context.WithoutCancel(ctx)
	go func() {
		if sendErr := s.mailer.SendCSVExport(sendCtx, recipientEmail, csvContent); sendErr != nil {
			metrics.Get().MailSendErrorsTotal.Add(sendCtx, 1)
		}
	}()

	l.InfoContext(ctx, "CSV export dispatched",
		slog.String("recipient", recipientEmail), slog.Int("movie_count", len(movies)))
	return nil
}
