package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/inkwell/dashboard/internal/core/domain"
)

const contentsPath = "/api/contents"

// ContentClient is the HTTP implementation of ports.ContentRepository.
// Payloads travel in a {"data": ...} envelope.
type ContentClient struct {
	c *Client
}

func NewContentClient(c *Client) *ContentClient {
	return &ContentClient{c: c}
}

type contentFields struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Body        string               `json:"body"`
	Status      domain.ContentStatus `json:"status"`
	LegacyState domain.ContentStatus `json:"statuss"`
	AuthorID    flexID               `json:"authorId"`
	AuthorName  string               `json:"authorName"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	PublishedAt *time.Time           `json:"publishedAt"`
}

// wireContent is a content record either flat or nested under attributes.
type wireContent struct {
	ID         flexID         `json:"id"`
	Attributes *contentFields `json:"attributes"`
	contentFields
}

func (w wireContent) item() (domain.ContentItem, error) {
	f := w.contentFields
	if w.Attributes != nil {
		f = *w.Attributes
	}
	if w.ID == "" {
		return domain.ContentItem{}, fmt.Errorf("%w: content without id", domain.ErrMalformedResponse)
	}
	status := f.Status
	if status == "" {
		status = f.LegacyState
	}
	if status == "" {
		status = domain.ContentStatusDraft
	}
	if !status.Valid() {
		return domain.ContentItem{}, fmt.Errorf("%w: content %s has status %q", domain.ErrMalformedResponse, w.ID, status)
	}
	return domain.ContentItem{
		ID:          string(w.ID),
		Title:       f.Title,
		Description: f.Description,
		Body:        f.Body,
		Status:      status,
		AuthorID:    string(f.AuthorID),
		AuthorName:  f.AuthorName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		PublishedAt: f.PublishedAt,
	}, nil
}

type dataEnvelope[T any] struct {
	Data *T `json:"data"`
}

type contentWrite struct {
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Body        string               `json:"body,omitempty"`
	Status      domain.ContentStatus `json:"status,omitempty"`
}

func (cc *ContentClient) List(ctx context.Context, cred domain.Credential) ([]domain.ContentItem, error) {
	var env dataEnvelope[[]wireContent]
	if err := cc.c.do(ctx, "contents_list", http.MethodGet, contentsPath, cred, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: content list without data", domain.ErrMalformedResponse)
	}
	items := make([]domain.ContentItem, 0, len(*env.Data))
	for _, w := range *env.Data {
		it, err := w.item()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (cc *ContentClient) Get(ctx context.Context, cred domain.Credential, id string) (domain.ContentItem, error) {
	return cc.one(ctx, "contents_get", http.MethodGet, itemPath(id), cred, nil)
}

// Create stores draft as a new, unpublished item.
func (cc *ContentClient) Create(ctx context.Context, cred domain.Credential, draft domain.ContentDraft) (domain.ContentItem, error) {
	body := dataEnvelope[contentWrite]{Data: &contentWrite{
		Title:       draft.Title,
		Description: draft.Description,
		Body:        draft.Body,
		Status:      domain.ContentStatusDraft,
	}}
	return cc.one(ctx, "contents_create", http.MethodPost, contentsPath, cred, body)
}

func (cc *ContentClient) Update(ctx context.Context, cred domain.Credential, id string, draft domain.ContentDraft) (domain.ContentItem, error) {
	body := dataEnvelope[contentWrite]{Data: &contentWrite{
		Title:       draft.Title,
		Description: draft.Description,
		Body:        draft.Body,
	}}
	return cc.one(ctx, "contents_update", http.MethodPut, itemPath(id), cred, body)
}

func (cc *ContentClient) SetStatus(ctx context.Context, cred domain.Credential, id string, status domain.ContentStatus) (domain.ContentItem, error) {
	body := dataEnvelope[contentWrite]{Data: &contentWrite{Status: status}}
	return cc.one(ctx, "contents_status", http.MethodPut, itemPath(id), cred, body)
}

func (cc *ContentClient) Delete(ctx context.Context, cred domain.Credential, id string) error {
	return notFound(cc.c.do(ctx, "contents_delete", http.MethodDelete, itemPath(id), cred, nil, nil))
}

func (cc *ContentClient) one(ctx context.Context, endpoint, method, path string, cred domain.Credential, body any) (domain.ContentItem, error) {
	var env dataEnvelope[wireContent]
	if err := cc.c.do(ctx, endpoint, method, path, cred, body, &env); err != nil {
		var se *StatusError
		if errors.As(err, &se) && errors.Is(se, domain.ErrValidationFailed) {
			return domain.ContentItem{}, &domain.ValidationError{Message: firstNonEmpty(se.Message, "content rejected")}
		}
		return domain.ContentItem{}, notFound(err)
	}
	if env.Data == nil {
		return domain.ContentItem{}, fmt.Errorf("%w: content response without data", domain.ErrMalformedResponse)
	}
	return env.Data.item()
}

func itemPath(id string) string {
	return contentsPath + "/" + url.PathEscape(id)
}

// notFound maps a 404 to domain.ErrContentNotFound.
func notFound(err error) error {
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrContentNotFound, firstNonEmpty(se.Message, "not found"))
	}
	return err
}
