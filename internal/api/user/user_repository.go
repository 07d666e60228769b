package user

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

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// CreateUser inserts a user and returns the persisted record.
	// The password must already be hashed.
	CreateUser(ctx context.Context, req CreateUserRequest, hashedPassword string, roles []string) (*User, error)
	// GetUserByID returns api.ErrNotFound if the user doesn't exist.
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	// GetUserByMail returns the user including the password hash.
	// Returns api.ErrNotFound if no user has that mail.
	GetUserByMail(ctx context.Context, mail string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	// UpdateUser applies a partial patch and returns the full updated record.
	// A password in params must already be hashed.
	// Returns api.ErrNotFound if the user doesn't exist.
	UpdateUser(ctx context.Context, userID int64, params UpdateUserParams) (*User, error)
	// DeleteUser is idempotent; deleting a missing user is not an error.
	DeleteUser(ctx context.Context, userID int64) error
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresUserRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = "id, first_name, last_name, mail, username, password, roles, created_at, updated_at"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Mail, &u.Username,
		&u.Password, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, req CreateUserRequest, hashedPassword string, roles []string) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `
        INSERT INTO users (first_name, last_name, mail, username, password, roles)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + userColumns

	u, err := scanUser(r.pgpool.QueryRow(ctx, query,
		req.FirstName, req.LastName, req.Mail, req.Username, hashedPassword, roles))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			span.SetStatus(codes.Error, "Duplicate mail or username")
			return nil, fmt.Errorf("mail or username already taken: %w", api.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	r.logger.InfoContext(ctx, "User created", slog.Int64("userID", u.ID))
	return u, nil
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	u, err := scanUser(r.pgpool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) GetUserByMail(ctx context.Context, mail string) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByMail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	u, err := scanUser(r.pgpool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE mail = $1", mail))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", api.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query user by mail: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) ListUsers(ctx context.Context) ([]User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "ListUsers", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepo) UpdateUser(ctx context.Context, userID int64, params UpdateUserParams) (*User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.Int64("userID", userID))

	var setClauses []string
	var args []interface{}
	argID := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if params.FirstName != nil {
		addClause("first_name", *params.FirstName)
	}
	if params.LastName != nil {
		addClause("last_name", *params.LastName)
	}
	if params.Mail != nil {
		addClause("mail", *params.Mail)
	}
	if params.Username != nil {
		addClause("username", *params.Username)
	}
	if params.Password != nil {
		addClause("password", *params.Password)
	}

	if len(setClauses) == 0 {
		// Nothing to patch; still bump updated_at below so the patch is visible.
		l.WarnContext(ctx, "UpdateUser called with no fields to update")
	}
	addClause("updated_at", time.Now())

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, userColumns)

	u, err := scanUser(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user not found for update: %w", api.ErrNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			span.SetStatus(codes.Error, "Duplicate mail or username")
			return nil, fmt.Errorf("mail or username already taken: %w", api.ErrConflict)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	l.InfoContext(ctx, "User updated")
	return u, nil
}

func (r *PostgresUserRepo) DeleteUser(ctx context.Context, userID int64) error {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "DeleteUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	// Favorites cascade via the foreign key; a zero row count is a no-op.
	r.logger.InfoContext(ctx, "User deleted",
		slog.Int64("userID", userID), slog.Int64("rows_affected", tag.RowsAffected()))
	return nil
}

func (r *PostgresUserRepo) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}
