package domain

import "time"

// ContentStatus is the publication state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// Valid reports whether s is a known status.
func (s ContentStatus) Valid() bool {
	return s == ContentStatusDraft || s == ContentStatusPublished
}

// Toggled returns the status a publish toggle moves to.
func (s ContentStatus) Toggled() ContentStatus {
	if s == ContentStatusPublished {
		return ContentStatusDraft
	}
	return ContentStatusPublished
}

// ContentItem is a record owned by the remote content service.
type ContentItem struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Body        string        `json:"body"`
	Status      ContentStatus `json:"status"`
	AuthorID    string        `json:"authorId,omitempty"`
	AuthorName  string        `json:"authorName"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
}

// ContentDraft carries the editable fields of a content item.
type ContentDraft struct {
	Title       string `json:"title"       validate:"required,min=5,max=100"`
	Description string `json:"description" validate:"required,min=10,max=500"`
	Body        string `json:"body"        validate:"required,min=50"`
}

// ContentSummary backs the dashboard overview.
type ContentSummary struct {
	Total     int           `json:"total"`
	Published int           `json:"published"`
	Draft     int           `json:"draft"`
	Recent    []ContentItem `json:"recent"`
}
