package ports

import (
	"context"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// SessionReader exposes the published session state.
type SessionReader interface {
	State() domain.SessionState
}

// SessionController is the session surface consumed by the HTTP layer.
type SessionController interface {
	SessionReader
	Initialize(ctx context.Context) domain.SessionState
	Login(ctx context.Context, email, password string) (domain.SessionState, error)
	Register(ctx context.Context, reg domain.Registration) (domain.SessionState, error)
	Logout(ctx context.Context) domain.SessionState
	RefreshUserRole(ctx context.Context) (*domain.UserRecord, error)
	RefreshCredential(ctx context.Context) (domain.SessionState, error)
	Subscribe(buffer int) (<-chan domain.SessionState, func())
}

// ContentService is the role-gated content surface consumed by the HTTP layer.
type ContentService interface {
	List(ctx context.Context) ([]domain.ContentItem, error)
	Get(ctx context.Context, id string) (domain.ContentItem, error)
	Create(ctx context.Context, draft domain.ContentDraft) (domain.ContentItem, error)
	Update(ctx context.Context, id string, draft domain.ContentDraft) (domain.ContentItem, error)
	TogglePublish(ctx context.Context, id string) (domain.ContentItem, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, recent int) (domain.ContentSummary, error)
}
