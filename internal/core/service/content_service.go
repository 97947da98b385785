package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/ports"
)

// ContentService applies the session's permissions to the remote content
// repository. It reads the session, it never changes it.
type ContentService struct {
	repo      ports.ContentRepository
	session   ports.SessionReader
	validator *FormValidator
	logger    zerolog.Logger
}

func NewContentService(repo ports.ContentRepository, session ports.SessionReader, validator *FormValidator, logger zerolog.Logger) *ContentService {
	if validator == nil {
		validator = NewFormValidator()
	}
	return &ContentService{
		repo:      repo,
		session:   session,
		validator: validator,
		logger:    logger.With().Str("component", "content").Logger(),
	}
}

// authorize returns the current session when it holds p.
func (s *ContentService) authorize(p domain.Permission) (domain.SessionState, error) {
	st := s.session.State()
	if err := DecisionError(AuthorizePermission(st, p)); err != nil {
		return st, fmt.Errorf("%s: %w", p, err)
	}
	return st, nil
}

func (s *ContentService) List(ctx context.Context) ([]domain.ContentItem, error) {
	st, err := s.authorize(domain.PermViewContent)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, st.Credential)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

func (s *ContentService) Get(ctx context.Context, id string) (domain.ContentItem, error) {
	st, err := s.authorize(domain.PermViewContent)
	if err != nil {
		return domain.ContentItem{}, err
	}
	item, err := s.repo.Get(ctx, st.Credential, id)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("get content %s: %w", id, err)
	}
	return item, nil
}

// Create validates draft and stores it as a new draft item.
func (s *ContentService) Create(ctx context.Context, draft domain.ContentDraft) (domain.ContentItem, error) {
	st, err := s.authorize(domain.PermCreateContent)
	if err != nil {
		return domain.ContentItem{}, err
	}
	if err := s.validator.Validate(draft); err != nil {
		return domain.ContentItem{}, err
	}
	item, err := s.repo.Create(ctx, st.Credential, draft)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("create content: %w", err)
	}
	s.logger.Info().Str("content_id", item.ID).Str("user_id", st.User.ID).Msg("content created")
	return item, nil
}

func (s *ContentService) Update(ctx context.Context, id string, draft domain.ContentDraft) (domain.ContentItem, error) {
	st, err := s.authorize(domain.PermEditContent)
	if err != nil {
		return domain.ContentItem{}, err
	}
	if err := s.validator.Validate(draft); err != nil {
		return domain.ContentItem{}, err
	}
	item, err := s.repo.Update(ctx, st.Credential, id, draft)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("update content %s: %w", id, err)
	}
	s.logger.Info().Str("content_id", id).Str("user_id", st.User.ID).Msg("content updated")
	return item, nil
}

// TogglePublish flips an item between draft and published.
func (s *ContentService) TogglePublish(ctx context.Context, id string) (domain.ContentItem, error) {
	st, err := s.authorize(domain.PermPublishContent)
	if err != nil {
		return domain.ContentItem{}, err
	}
	current, err := s.repo.Get(ctx, st.Credential, id)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("toggle publish %s: %w", id, err)
	}
	next := current.Status.Toggled()
	item, err := s.repo.SetStatus(ctx, st.Credential, id, next)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("toggle publish %s: %w", id, err)
	}
	s.logger.Info().Str("content_id", id).Str("status", string(next)).Str("user_id", st.User.ID).Msg("content status changed")
	return item, nil
}

func (s *ContentService) Delete(ctx context.Context, id string) error {
	st, err := s.authorize(domain.PermDeleteContent)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, st.Credential, id); err != nil {
		return fmt.Errorf("delete content %s: %w", id, err)
	}
	s.logger.Info().Str("content_id", id).Str("user_id", st.User.ID).Msg("content deleted")
	return nil
}

// Summary counts items by status and returns up to recent items, newest
// update first.
func (s *ContentService) Summary(ctx context.Context, recent int) (domain.ContentSummary, error) {
	items, err := s.List(ctx)
	if err != nil {
		return domain.ContentSummary{}, err
	}

	sum := domain.ContentSummary{Total: len(items), Recent: []domain.ContentItem{}}
	for _, it := range items {
		switch it.Status {
		case domain.ContentStatusPublished:
			sum.Published++
		case domain.ContentStatusDraft:
			sum.Draft++
		}
	}

	sorted := append([]domain.ContentItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	if recent > len(sorted) {
		recent = len(sorted)
	}
	if recent > 0 {
		sum.Recent = sorted[:recent]
	}
	return sum, nil
}
