package devapi

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// Seed is the fixture the service starts with.
type Seed struct {
	Users    []SeedUser    `yaml:"users"`
	Contents []SeedContent `yaml:"contents"`
}

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type SeedContent struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Body        string `yaml:"body"`
	Status      string `yaml:"status"`
	// Author is the email of a seeded user.
	Author    string    `yaml:"author"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

// DefaultSeed has one account per role, all with password "password", and
// a couple of items.
func DefaultSeed() *Seed {
	return &Seed{
		Users: []SeedUser{
			{Name: "User", Email: "user@example.com", Password: "password", Role: "User"},
			{Name: "Admin", Email: "admin@example.com", Password: "password", Role: "Admin"},
			{Name: "Super Admin", Email: "superadmin@example.com", Password: "password", Role: "Super Admin"},
		},
		Contents: []SeedContent{
			{
				Title:       "Welcome to the platform",
				Description: "A short tour of what you can do here.",
				Body:        "Browse published content, and if your role allows it, create drafts and publish them for everyone to read.",
				Status:      string(domain.ContentStatusPublished),
				Author:      "admin@example.com",
			},
			{
				Title:       "Editorial guidelines",
				Description: "Draft notes on tone and structure.",
				Body:        "Keep titles short, lead with the point, and link sources. This draft is visible to editors until it is published.",
				Status:      string(domain.ContentStatusDraft),
				Author:      "superadmin@example.com",
			},
		},
	}
}

// LoadSeed reads a YAML fixture file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

// Apply creates the seeded accounts and contents.
func (s *Seed) Apply(ctx context.Context, auth *AuthService, store *MemoryStore) error {
	authors := make(map[string]*User, len(s.Users))
	for _, su := range s.Users {
		role := domain.RoleNone
		if su.Role != "" {
			var ok bool
			if role, ok = domain.ParseRole(su.Role); !ok {
				return fmt.Errorf("seed user %s: unknown role %q", su.Email, su.Role)
			}
		}
		u, err := auth.CreateAccount(ctx, su.Name, su.Email, su.Password, role)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		authors[strings.ToLower(su.Email)] = u
	}

	for _, sc := range s.Contents {
		status := domain.ContentStatus(strings.ToLower(sc.Status))
		if status == "" {
			status = domain.ContentStatusDraft
		}
		if !status.Valid() {
			return fmt.Errorf("seed content %q: unknown status %q", sc.Title, sc.Status)
		}
		item := &Content{
			Title:       sc.Title,
			Description: sc.Description,
			Body:        sc.Body,
			Status:      status,
			CreatedAt:   sc.CreatedAt,
		}
		if a, ok := authors[strings.ToLower(sc.Author)]; ok {
			item.AuthorID, item.AuthorName = a.ID, a.Name
		}
		store.CreateContent(ctx, item)
	}
	return nil
}
