package ports

import (
	"context"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// SessionStore durably keeps the credential/user pair across restarts.
//
// Save writes both values as one unit. Load returns domain.ErrNoStoredSession
// when nothing usable is stored; a half-written or corrupt pair is cleared
// and reported the same way. Clear removes both.
type SessionStore interface {
	Save(ctx context.Context, cred domain.Credential, user domain.UserRecord) error
	Load(ctx context.Context) (domain.StoredSession, error)
	Clear(ctx context.Context) error
}

// Pinger is implemented by stores and clients that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
