package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// RoleResolver fetches a user's authoritative role from the users endpoint.
type RoleResolver struct {
	c *Client
}

func NewRoleResolver(c *Client) *RoleResolver {
	return &RoleResolver{c: c}
}

// Resolve returns the role of userID. A null role is RoleNone. A body that
// carries no role field at all is malformed.
func (r *RoleResolver) Resolve(ctx context.Context, cred domain.Credential, userID string) (domain.Role, error) {
	if userID == "" {
		return domain.RoleNone, errors.New("resolve role: empty user id")
	}
	path := "/users/" + url.PathEscape(userID) + "?populate=role"

	var body struct {
		Role json.RawMessage `json:"role"`
		Data *struct {
			Attributes struct {
				Role json.RawMessage `json:"role"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := r.c.do(ctx, "users_role", http.MethodGet, path, cred, nil, &body); err != nil {
		return domain.RoleNone, err
	}

	raw := body.Role
	if len(raw) == 0 && body.Data != nil {
		raw = body.Data.Attributes.Role
	}
	if len(raw) == 0 {
		return domain.RoleNone, fmt.Errorf("%w: user %s has no role field", domain.ErrMalformedResponse, userID)
	}

	var role domain.Role
	if err := json.Unmarshal(raw, &role); err != nil {
		return domain.RoleNone, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return role, nil
}
