package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/filmotheque/movies-api/app/db"
	"github.com/filmotheque/movies-api/app/mail"
	"github.com/filmotheque/movies-api/config"
	"github.com/filmotheque/movies-api/internal/api/auth"
	"github.com/filmotheque/movies-api/internal/api/movie"
	"github.com/filmotheque/movies-api/internal/api/user"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Mailer mail.Mailer

	UserHandler  *user.HandlerImpl
	MovieHandler *movie.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	mailer, err := mail.NewSMTPMailer(cfg.Mail, logger)
	if err != nil {
		logger.Error("Failed to initialize SMTP mailer", slog.Any("error", err))
		pool.Close()
		return nil, err
	}
	hasher := auth.NewBcryptHasher()
	tokens := auth.NewJWTTokenService(cfg.JWT)

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, hasher, tokens, mailer, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	movieRepo := movie.NewPostgresMovieRepo(pool, logger)
	movieService := movie.NewServiceImpl(movieRepo, userRepo, mailer, logger)
	movieHandler := movie.NewHandlerImpl(movieService, logger)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		Mailer:       mailer,
		UserHandler:  userHandler,
		MovieHandler: movieHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
