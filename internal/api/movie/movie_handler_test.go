package movie

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"log/slog"

	"github.com/filmotheque/movies-api/internal/api"
	"github.com/filmotheque/movies-api/internal/api/auth"
)

// MockMovieService is a mock implementation of the Service interface
type MockMovieService struct {
	mock.Mock
}

func (m *MockMovieService) Create(ctx context.Context, req CreateMovieRequest) (*Movie, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Movie), args.Error(1)
}

func (m *MockMovieService) Get(ctx context.Context, movieID int64) (*Movie, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Movie), args.Error(1)
}

func (m *MockMovieService) List(ctx context.Context) ([]Movie, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Movie), args.Error(1)
}

func (m *MockMovieService) Update(ctx context.Context, movieID int64, params UpdateMovieParams) (*Movie, error) {
	args := m.Called(ctx, movieID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Movie), args.Error(1)
}

func (m *MockMovieService) Delete(ctx context.Context, movieID int64) error {
	args := m.Called(ctx, movieID)
	return args.Error(0)
}

func (m *MockMovieService) AddToFavorites(ctx context.Context, userID, movieID int64) (*Favorite, error) {
	args := m.Called(ctx, userID, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Favorite), args.Error(1)
}

func (m *MockMovieService) RemoveFromFavorites(ctx context.Context, userID, movieID int64) error {
	args := m.Called(ctx, userID, movieID)
	return args.Error(0)
}

func (m *MockMovieService) ListFavorites(ctx context.Context, userID int64) ([]Movie, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Movie), args.Error(1)
}

func (m *MockMovieService) ExportMoviesToCSV(ctx context.Context, recipientEmail string) error {
	args := m.Called(ctx, recipientEmail)
	return args.Error(0)
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asUser stamps an authenticated principal onto the request context.
func asUser(r *http.Request, userID int64, mail string) *http.Request {
	ctx := context.WithValue(r.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.UserMailKey, mail)
	return r.WithContext(ctx)
}

func TestCreateMovieHandler(t *testing.T) {
	mockService := new(MockMovieService)
	logger := slog.Default()
	handler := NewHandlerImpl(mockService, logger)

	t.Run("Success", func(t *testing.T) {
		reqBody := CreateMovieRequest{
			Title:       "Le Samouraï",
			Description: "Un tueur à gages solitaire est traqué",
			ReleaseDate: ReleaseDate{Time: time.Date(1967, 10, 25, 0, 0, 0, 0, time.UTC)},
			Director:    "Jean-Pierre Melville",
		}
		body, _ := json.Marshal(reqBody)

		req := httptest.NewRequest(http.MethodPost, "/movie", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		mockService.On("Create", mock.Anything, reqBody).
			Return(&Movie{ID: 1, Title: reqBody.Title}, nil).Once()

		handler.CreateMovie(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var created Movie
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, int64(1), created.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		mockService := new(MockMovieService)
		handler := NewHandlerImpl(mockService, logger)
		body := []byte(`{"title": "", "description": "too short", "director": "X"}`)

		req := httptest.NewRequest(http.MethodPost, "/movie", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.CreateMovie(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestGetMovieHandler(t *testing.T) {
	mockService := new(MockMovieService)
	logger := slog.Default()
	handler := NewHandlerImpl(mockService, logger)

	t.Run("Success", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/movie/42", nil), "id", "42")
		w := httptest.NewRecorder()

		mockService.On("Get", mock.Anything, int64(42)).
			Return(&Movie{ID: 42, Title: "La Haine"}, nil).Once()

		handler.GetMovie(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/movie/99", nil), "id", "99")
		w := httptest.NewRecorder()

		mockService.On("Get", mock.Anything, int64(99)).
			Return(nil, api.ErrNotFound).Once()

		handler.GetMovie(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("NonNumericID", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/movie/abc", nil), "id", "abc")
		w := httptest.NewRecorder()

		handler.GetMovie(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListMoviesHandler(t *testing.T) {
	mockService := new(MockMovieService)
	logger := slog.Default()
	handler := NewHandlerImpl(mockService, logger)

	t.Run("EmptyCatalogReturnsEmptyArray", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/movies", nil)
		w := httptest.NewRecorder()

		mockService.On("List", mock.Anything).Return([]Movie(nil), nil).Once()

		handler.ListMovies(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestUpdateMovieHandler(t *testing.T) {
	mockService := new(MockMovieService)
	logger := slog.Default()
	handler := NewHandlerImpl(mockService, logger)

	t.Run("Success", func(t *testing.T) {
		body := []byte(`{"title": "Le Samouraï (restauré)"}`)

		req := withURLParam(httptest.NewRequest(http.MethodPatch, "/movie/42", bytes.NewBuffer(body)), "id", "42")
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		title := "Le Samouraï (restauré)"
		mockService.On("Update", mock.Anything, int64(42), UpdateMovieParams{Title: &title}).
			Return(&Movie{ID: 42, Title: title}, nil).Once()

		handler.UpdateMovie(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var updated Movie
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, title, updated.Title)
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownMovieID", func(t *testing.T) {
		body := []byte(`{"title": "X"}`)

		req := withURLParam(httptest.NewRequest(http.MethodPatch, "/movie/999999", bytes.NewBuffer(body)), "id", "999999")
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		title := "X"
		mockService.On("Update", mock.Anything, int64(999999), UpdateMovieParams{Title: &title}).
			Return(nil, api.ErrNotFound).Once()

		handler.UpdateMovie(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidPatch", func(t *testing.T) {
		body := []byte(`{"director": "X"}`)

		req := withURLParam(httptest.NewRequest(http.MethodPatch, "/movie/43", bytes.NewBuffer(body)), "id", "43")
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.UpdateMovie(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Update", mock.Anything, int64(43), mock.Anything)
	})
}

func TestDeleteMovieHandler(t *testing.T) {
	mockService := new(MockMovieService)
	logger := slog.Default()
	handler := NewHandlerImpl(mockService, logger)

	t.Run("ReturnsNoContent", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/movie/42", nil), "id", "42")
		w := httptest.NewRecorder()

		mockService.On("Delete", mock.Anything, int64(42)).Return(nil).Once()

		handler.DeleteMovie(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestAddToFavoritesHandler(t *testing.T) {
	mockService := new(MockMovieService)
	logger := slog.Default()
	handler := NewHandlerImpl(mockService, logger)

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/movies/favorites/42", nil)
		req = asUser(req, 1, "amelie@example.com")
		req = withURLParam(req, "movieId", "42")
		w := httptest.NewRecorder()

		mockService.On("AddToFavorites", mock.Anything, int64(1), int64(42)).
			Return(&Favorite{ID: 7, UserID: 1, MovieID: 42}, nil).Once()

		handler.AddToFavorites(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/movies/favorites/42", nil)
		req = asUser(req, 1, "amelie@example.com")
		req = withURLParam(req, "movieId", "42")
		w := httptest.NewRecorder()

		mockService.On("AddToFavorites", mock.Anything, int64(1), int64(42)).
			Return(nil, api.ErrConflict).Once()

		handler.AddToFavorites(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("MovieNotFound", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/movies/favorites/404", nil)
		req = asUser(req, 1, "amelie@example.com")
		req = withURLParam(req, "movieId", "404")
		w := httptest.NewRecorder()

		mockService.On("AddToFavorites", mock.Anything, int64(1), int64(404)).
			Return(nil, api.ErrNotFound).Once()

		handler.AddToFavorites(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		mockService := new(MockMovieService)
		handler := NewHandlerImpl(mockService, logger)
		req := withURLParam(httptest.NewRequest(http.MethodPost, "/movies/favorites/42", nil), "movieId", "42")
		w := httptest.NewRecorder()

		handler.AddToFavorites(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "AddToFavorites", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRemoveFromFavoritesHandler(t *testing.T) {
	mockService := new(MockMovieService)
	logger := slog.Default()
	handler := NewHandlerImpl(mockService, logger)

	t.Run("NotInFavorites", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/movies/favorites/42", nil)
		req = asUser(req, 1, "amelie@example.com")
		req = withURLParam(req, "movieId", "42")
		w := httptest.NewRecorder()

		mockService.On("RemoveFromFavorites", mock.Anything, int64(1), int64(42)).
			Return(api.ErrNotFound).Once()

		handler.RemoveFromFavorites(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestExportMoviesHandler(t *testing.T) {
	mockService := new(MockMovieService)
	logger := slog.Default()
	handler := NewHandlerImpl(mockService, logger)

	t.Run("AcknowledgesImmediately", func(t *testing.T) {
		req := asUser(httptest.NewRequest(http.MethodPost, "/movies/export", nil), 1, "admin@filmotheque.local")
		w := httptest.NewRecorder()

		mockService.On("ExportMoviesToCSV", mock.Anything, "admin@filmotheque.local").
			Return(nil).Once()

		handler.ExportMovies(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp api.Response
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Export started. You will receive an email shortly.", resp.Message)
		mockService.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		mockService := new(MockMovieService)
		handler := NewHandlerImpl(mockService, logger)
		req := httptest.NewRequest(http.MethodPost, "/movies/export", nil)
		w := httptest.NewRecorder()

		handler.ExportMovies(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "ExportMoviesToCSV", mock.Anything, mock.Anything)
	})
}
