// Package devapi is an in-memory stand-in for the remote auth, role and
// content service the dashboard talks to. It exists for local development
// and for exercising the remote clients end to end in tests.
package devapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/inkwell/dashboard/internal/core/domain"
)

var (
	ErrUserExists       = errors.New("email already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidSignup    = errors.New("name, email and a password of at least 6 characters are required")
	ErrTokenRevoked     = errors.New("token revoked")
	ErrContentNotFound  = errors.New("content not found")
	ErrInvalidContentID = errors.New("invalid content id")
)

// User is an account held by the service.
type User struct {
	ID           int
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         domain.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Content is a stored content record.
type Content struct {
	ID          int
	Title       string
	Description string
	Body        string
	Status      domain.ContentStatus
	AuthorID    int
	AuthorName  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

// userJSON is the user shape returned by the auth endpoints.
type userJSON struct {
	ID       int         `json:"id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

func toUserJSON(u *User) userJSON {
	return userJSON{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email, Role: u.Role}
}

type contentAttributes struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Body        string               `json:"body"`
	Status      domain.ContentStatus `json:"status"`
	AuthorID    string               `json:"authorId,omitempty"`
	AuthorName  string               `json:"authorName"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	PublishedAt *time.Time           `json:"publishedAt"`
}

func (c *Content) attributes() contentAttributes {
	a := contentAttributes{
		Title:       c.Title,
		Description: c.Description,
		Body:        c.Body,
		Status:      c.Status,
		AuthorName:  c.AuthorName,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		PublishedAt: c.PublishedAt,
	}
	if c.AuthorID != 0 {
		a.AuthorID = strconv.Itoa(c.AuthorID)
	}
	return a
}

// flatContent is the list representation: fields next to the id.
type flatContent struct {
	ID int `json:"id"`
	contentAttributes
}

// nestedContent is the single-record representation: fields under
// attributes.
type nestedContent struct {
	ID         int               `json:"id"`
	Attributes contentAttributes `json:"attributes"`
}
