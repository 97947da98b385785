package devapi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// MemoryStore holds users and contents for the life of the process.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[int]*User
	byEmail     map[string]int
	contents    map[int]*Content
	nextUser    int
	nextContent int
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[int]*User),
		byEmail:     make(map[string]int),
		contents:    make(map[int]*Content),
		nextUser:    1,
		nextContent: 1,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func cloneContent(c *Content) *Content {
	clone := *c
	if c.PublishedAt != nil {
		t := *c.PublishedAt
		clone.PublishedAt = &t
	}
	return &clone
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser assigns the next id and stores user.
func (s *MemoryStore) CreateUser(_ context.Context, user *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return nil, ErrUserExists
	}
	u := cloneUser(user)
	u.ID = s.nextUser
	s.nextUser++
	s.users[u.ID] = u
	s.byEmail[key] = u.ID
	return cloneUser(u), nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

// SetRole changes a user's role.
func (s *MemoryStore) SetRole(_ context.Context, id int, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = s.now()
	return nil
}

// ListContents returns every item ordered by id.
func (s *MemoryStore) ListContents(_ context.Context) []*Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Content, 0, len(s.contents))
	for _, c := range s.contents {
		out = append(out, cloneContent(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) GetContent(_ context.Context, id int) (*Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, ErrContentNotFound
	}
	return cloneContent(c), nil
}

// CreateContent stores c with the next id. Timestamps are set here unless
// the caller already filled them.
func (s *MemoryStore) CreateContent(_ context.Context, c *Content) *Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := cloneContent(c)
	item.ID = s.nextContent
	s.nextContent++
	now := s.now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}
	if item.Status == domain.ContentStatusPublished && item.PublishedAt == nil {
		t := item.UpdatedAt
		item.PublishedAt = &t
	}
	s.contents[item.ID] = item
	return cloneContent(item)
}

// UpdateContent applies fn to the stored item under the write lock. fn
// returning an error leaves the item unchanged.
func (s *MemoryStore) UpdateContent(_ context.Context, id int, fn func(*Content) error) (*Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.contents[id]
	if !ok {
		return nil, ErrContentNotFound
	}
	next := cloneContent(current)
	wasPublished := next.Status == domain.ContentStatusPublished
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()
	switch {
	case next.Status == domain.ContentStatusPublished && !wasPublished:
		t := next.UpdatedAt
		next.PublishedAt = &t
	case next.Status != domain.ContentStatusPublished:
		next.PublishedAt = nil
	}
	s.contents[id] = next
	return cloneContent(next), nil
}

func (s *MemoryStore) DeleteContent(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[id]; !ok {
		return ErrContentNotFound
	}
	delete(s.contents, id)
	return nil
}
