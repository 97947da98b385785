package ports

import (
	"context"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// ContentRepository is the remote content service. Every call is made on
// behalf of cred.
type ContentRepository interface {
	List(ctx context.Context, cred domain.Credential) ([]domain.ContentItem, error)
	Get(ctx context.Context, cred domain.Credential, id string) (domain.ContentItem, error)
	Create(ctx context.Context, cred domain.Credential, draft domain.ContentDraft) (domain.ContentItem, error)
	Update(ctx context.Context, cred domain.Credential, id string, draft domain.ContentDraft) (domain.ContentItem, error)
	SetStatus(ctx context.Context, cred domain.Credential, id string, status domain.ContentStatus) (domain.ContentItem, error)
	Delete(ctx context.Context, cred domain.Credential, id string) error
}
