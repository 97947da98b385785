package ports

import (
	"context"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// AuthGateway talks to the remote identity service. Each call issues one
// request and normalizes the result or returns a domain error.
type AuthGateway interface {
	// Login fails with ErrInvalidCredentials, ErrUnreachable or ErrMalformedResponse.
	Login(ctx context.Context, email, password string) (domain.AuthResult, error)
	// Register additionally fails with ErrValidationFailed when the service
	// rejects the payload.
	Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error)
	// Verify returns the user behind cred, or ErrUnauthorized. It never
	// touches persistent storage.
	Verify(ctx context.Context, cred domain.Credential) (domain.UserRecord, error)
	// Logout invalidates cred remotely. Callers treat failure as best-effort.
	Logout(ctx context.Context, cred domain.Credential) error
	// Refresh returns a renewed credential, or false on any failure.
	Refresh(ctx context.Context, cred domain.Credential) (domain.Credential, bool)
}

// RoleResolver looks up the authoritative role for a user id. A user with no
// role assigned resolves to RoleNone with a nil error.
type RoleResolver interface {
	Resolve(ctx context.Context, cred domain.Credential, userID string) (domain.Role, error)
}
