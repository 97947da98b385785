package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// AuthGateway is the HTTP implementation of ports.AuthGateway.
type AuthGateway struct {
	c *Client
}

func NewAuthGateway(c *Client) *AuthGateway {
	return &AuthGateway{c: c}
}

type wireUser struct {
	ID       flexID      `json:"id"`
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

func (u wireUser) record() domain.UserRecord {
	return domain.UserRecord{
		ID:          string(u.ID),
		DisplayName: firstNonEmpty(u.Name, u.Username),
		Email:       u.Email,
		Role:        u.Role,
	}
}

type authResponse struct {
	User  *wireUser `json:"user"`
	Token string    `json:"token"`
	JWT   string    `json:"jwt"`
}

func (r authResponse) result() (domain.AuthResult, error) {
	token := firstNonEmpty(r.Token, r.JWT)
	if token == "" || r.User == nil {
		return domain.AuthResult{}, fmt.Errorf("%w: auth response without user or token", domain.ErrMalformedResponse)
	}
	user := r.User.record()
	if !user.Valid() {
		return domain.AuthResult{}, fmt.Errorf("%w: auth response user lacks id or email", domain.ErrMalformedResponse)
	}
	return domain.AuthResult{Credential: domain.Credential(token), User: user}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a credential. Any 4xx rejection
// is reported as domain.ErrInvalidCredentials.
func (g *AuthGateway) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	var resp authResponse
	err := g.c.do(ctx, "auth_login", http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code < http.StatusInternalServerError && se.Code != http.StatusNotFound {
			return domain.AuthResult{}, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, firstNonEmpty(se.Message, "login rejected"))
		}
		return domain.AuthResult{}, err
	}
	return resp.result()
}

// Register creates an account. A rejection carrying a server message comes
// back as *domain.ValidationError.
func (g *AuthGateway) Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error) {
	var resp authResponse
	body := registerRequest{Name: reg.DisplayName, Email: reg.Email, Password: reg.Password}
	err := g.c.do(ctx, "auth_register", http.MethodPost, "/auth/register", "", body, &resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && errors.Is(se, domain.ErrValidationFailed) {
			return domain.AuthResult{}, &domain.ValidationError{Message: firstNonEmpty(se.Message, "registration rejected")}
		}
		return domain.AuthResult{}, err
	}
	return resp.result()
}

// Verify returns the user cred belongs to. The body may be the user itself
// or {"user": ...}.
func (g *AuthGateway) Verify(ctx context.Context, cred domain.Credential) (domain.UserRecord, error) {
	var raw json.RawMessage
	if err := g.c.do(ctx, "auth_verify", http.MethodGet, "/auth/verify", cred, nil, &raw); err != nil {
		return domain.UserRecord{}, err
	}

	var env struct {
		User *wireUser `json:"user"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.UserRecord{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if env.User == nil {
		var u wireUser
		if err := json.Unmarshal(raw, &u); err != nil {
			return domain.UserRecord{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
		env.User = &u
	}
	user := env.User.record()
	if user.ID == "" {
		return domain.UserRecord{}, fmt.Errorf("%w: verify response without user id", domain.ErrMalformedResponse)
	}
	return user, nil
}

// Logout invalidates cred remotely.
func (g *AuthGateway) Logout(ctx context.Context, cred domain.Credential) error {
	return g.c.do(ctx, "auth_logout", http.MethodPost, "/auth/logout", cred, nil, nil)
}

// Refresh asks for a renewed credential. It reports false on any failure.
func (g *AuthGateway) Refresh(ctx context.Context, cred domain.Credential) (domain.Credential, bool) {
	var resp struct {
		Token string `json:"token"`
		JWT   string `json:"jwt"`
	}
	if err := g.c.do(ctx, "auth_refresh", http.MethodPost, "/auth/refresh", cred, nil, &resp); err != nil {
		return "", false
	}
	token := firstNonEmpty(resp.Token, resp.JWT)
	if token == "" {
		return "", false
	}
	return domain.Credential(token), true
}
