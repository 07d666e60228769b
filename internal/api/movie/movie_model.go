package movie

import (
	"fmt"
	"strings"
	"time"

	"github.com/filmotheque/movies-api/internal/api"
)

// ReleaseDate accepts both date-only ("2010-07-16") and RFC 3339 payloads.
// Marshaling is inherited from time.Time.
type ReleaseDate struct {
	time.Time
}

func (d *ReleaseDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("releaseDate must be a date (2006-01-02) or RFC 3339 timestamp: %w", api.ErrBadRequest)
	}
	d.Time = t
	return nil
}

type Movie struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ReleaseDate time.Time `json:"releaseDate"`
	Director    string    `json:"director"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Favorite is the join record marking a movie as favorited by a user.
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	MovieID   int64     `json:"movieId"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateMovieRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ReleaseDate ReleaseDate `json:"releaseDate"`
	Director    string      `json:"director"`
}

func (r CreateMovieRequest) Validate() error {
	if len(r.Title) < 1 {
		return fmt.Errorf("title is required: %w", api.ErrBadRequest)
	}
	if len(r.Description) < 10 {
		return fmt.Errorf("description must be at least 10 characters: %w", api.ErrBadRequest)
	}
	if r.ReleaseDate.IsZero() {
		return fmt.Errorf("releaseDate is required: %w", api.ErrBadRequest)
	}
	if len(r.Director) < 3 {
		return fmt.Errorf("director must be at least 3 characters: %w", api.ErrBadRequest)
	}
	return nil
}

// UpdateMovieParams is a partial patch; nil fields are left untouched.
type UpdateMovieParams struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	ReleaseDate *ReleaseDate `json:"releaseDate,omitempty"`
	Director    *string      `json:"director,omitempty"`
}

func (p UpdateMovieParams) Validate() error {
	if p.Title != nil && len(*p.Title) < 1 {
		return fmt.Errorf("title must not be empty: %w", api.ErrBadRequest)
	}
	if p.Description != nil && len(*p.Description) < 10 {
		return fmt.Errorf("description must be at least 10 characters: %w", api.ErrBadRequest)
	}
	if p.Director != nil && len(*p.Director) < 3 {
		return fmt.Errorf("director must be at least 3 characters: %w", api.ErrBadRequest)
	}
	return nil
}
