package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/filmotheque/movies-api/internal/api"
)

// User is an account holder. The password hash never leaves the API.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Mail      string    `json:"mail"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateUserRequest represents the registration request body.
type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
	Mail      string `json:"mail"`
	Username  string `json:"username"`
}

func (r CreateUserRequest) Validate() error {
	if len(r.FirstName) < 3 {
		return fmt.Errorf("firstName must be at least 3 characters: %w", api.ErrBadRequest)
	}
	if len(r.LastName) < 3 {
		return fmt.Errorf("lastName must be at least 3 characters: %w", api.ErrBadRequest)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", api.ErrBadRequest)
	}
	if err := validateMail(r.Mail); err != nil {
		return err
	}
	if len(r.Username) < 3 {
		return fmt.Errorf("username must be at least 3 characters: %w", api.ErrBadRequest)
	}
	return nil
}

// UpdateUserParams is a partial patch; nil fields are left untouched.
type UpdateUserParams struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Password  *string `json:"password,omitempty"`
	Mail      *string `json:"mail,omitempty"`
	Username  *string `json:"username,omitempty"`
}

func (p UpdateUserParams) Validate() error {
	if p.FirstName != nil && len(*p.FirstName) < 3 {
		return fmt.Errorf("firstName must be at least 3 characters: %w", api.ErrBadRequest)
	}
	if p.LastName != nil && len(*p.LastName) < 3 {
		return fmt.Errorf("lastName must be at least 3 characters: %w", api.ErrBadRequest)
	}
	if p.Password != nil && len(*p.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", api.ErrBadRequest)
	}
	if p.Mail != nil {
		if err := validateMail(*p.Mail); err != nil {
			return err
		}
	}
	if p.Username != nil && len(*p.Username) < 3 {
		return fmt.Errorf("username must be at least 3 characters: %w", api.ErrBadRequest)
	}
	return nil
}

func validateMail(mail string) error {
	if len(mail) < 8 || !strings.Contains(mail, "@") {
		return fmt.Errorf("mail must be a valid email address: %w", api.ErrBadRequest)
	}
	return nil
}
