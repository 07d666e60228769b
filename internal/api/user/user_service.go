package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/filmotheque/movies-api/app/mail"
	"github.com/filmotheque/movies-api/app/observability/metrics"
	"github.com/filmotheque/movies-api/internal/api"
	"github.com/filmotheque/movies-api/internal/api/auth"
)

var _ UserService = (*ServiceImpl)(nil)

// UserService owns user lifecycle and the credential check behind login.
type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, userID int64, params UpdateUserParams) (*User, error)
	Delete(ctx context.Context, userID int64) error
	// Login verifies credentials and returns a signed access token.
	// Returns api.ErrUnauthenticated for an unknown mail or a bad password.
	Login(ctx context.Context, mail, password string) (string, error)
}

type ServiceImpl struct {
	repo   UserRepo
	hasher auth.PasswordHasher
	tokens auth.TokenService
	mailer mail.Mailer
	logger *slog.Logger
}

func NewUserService(repo UserRepo, hasher auth.PasswordHasher, tokens auth.TokenService, mailer mail.Mailer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		mailer: mailer,
		logger: logger,
	}
}

// Create registers a user with the default "user" role and dispatches a
// welcome email off the critical path.
func (s *ServiceImpl) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateUser(ctx, req, hashed, []string{auth.ScopeUser})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return nil, err
	}

	// Fire and forget; a failed welcome mail never fails registration.
	go func(to, firstName string) {
		_ = s.mailer.SendWelcomeEmail(context.WithoutCancel(ctx), to, firstName)
	}(created.Mail, created.FirstName)

	return created, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		return nil, err
	}
	return users, nil
}

// Update applies a partial patch. The password is re-hashed only when a
// plaintext password field is explicitly supplied; echoing back a fetched
// record does not silently double-hash a stored hash.
func (s *ServiceImpl) Update(ctx context.Context, userID int64, params UpdateUserParams) (*User, error) {
	if params.Password != nil {
		hashed, err := s.hasher.Hash(*params.Password)
		if err != nil {
			return nil, err
		}
		params.Password = &hashed
	}

	updated, err := s.repo.UpdateUser(ctx, userID, params)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update user",
			slog.Int64("userID", userID), slog.Any("error", err))
		return nil, err
	}
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete user",
			slog.Int64("userID", userID), slog.Any("error", err))
		return err
	}
	return nil
}

func (s *ServiceImpl) Login(ctx context.Context, mailAddr, password string) (string, error) {
	u, err := s.repo.GetUserByMail(ctx, mailAddr)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			metrics.Get().LoginFailuresTotal.Add(ctx, 1)
			return "", fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
		}
		return "", err
	}

	if err := s.hasher.Compare(u.Password, password); err != nil {
		metrics.Get().LoginFailuresTotal.Add(ctx, 1)
		return "", fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
	}

	token, err := s.tokens.GenerateToken(u.ID, u.FirstName, u.LastName, u.Mail, u.Roles)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate access token", slog.Any("error", err))
		return "", err
	}

	s.logger.InfoContext(ctx, "User logged in", slog.Int64("userID", u.ID))
	return token, nil
}
