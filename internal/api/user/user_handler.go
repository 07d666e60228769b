package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/filmotheque/movies-api/internal/api"
	"github.com/filmotheque/movies-api/internal/api/auth"
)

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// CreateUser handles public registration.
func (h *HandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "CreateUser", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/user"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateUser"))

	var req CreateUserRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		l.WarnContext(ctx, "Invalid registration payload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.userService.Create(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to create user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, created)
}

// ListUsers returns all users.
func (h *HandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "ListUsers", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/users"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListUsers"))

	users, err := h.userService.List(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to list users")
		return
	}
	if users == nil {
		users = []User{}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, users)
}

// UpdateUser applies a partial patch to a user.
func (h *HandlerImpl) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "UpdateUser", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/user/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateUser"))

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var params UpdateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := params.Validate(); err != nil {
		l.WarnContext(ctx, "Invalid update payload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userService.Update(ctx, userID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update user", slog.Int64("userID", userID), slog.Any("error", err))
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to update user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteUser removes a user; deleting a missing user still succeeds.
func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "DeleteUser", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/user/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteUser"))

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.userService.Delete(ctx, userID); err != nil {
		l.ErrorContext(ctx, "Failed to delete user", slog.Int64("userID", userID), slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "Failed to delete user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// Login verifies credentials and returns a signed access token.
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/user/login"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))

	var req auth.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Mail == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "mail and password are required")
		return
	}

	token, err := h.userService.Login(ctx, req.Mail, req.Password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			l.WarnContext(ctx, "Login rejected", slog.String("mail", req.Mail))
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Login failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, auth.LoginResponse{
		Token:   token,
		Message: "Login successful",
	})
}
