package service

import (
	"testing"

	"github.com/inkwell/dashboard/internal/core/domain"
)

func sessionWith(role domain.Role) domain.SessionState {
	return domain.AuthenticatedState("tok", domain.UserRecord{ID: "1", Email: "u@example.com", Role: role})
}

func TestAuthorize(t *testing.T) {
	adminOnly := domain.Roles(domain.RoleAdmin, domain.RoleSuperAdmin)

	tests := []struct {
		name     string
		session  domain.SessionState
		required domain.RoleSet
		want     Decision
	}{
		{"user on admin route", sessionWith(domain.RoleUser), adminOnly, RedirectToDefault},
		{"admin on admin route", sessionWith(domain.RoleAdmin), adminOnly, Allow},
		{"super admin on admin route", sessionWith(domain.RoleSuperAdmin), adminOnly, Allow},
		{"signed out on admin route", domain.UnauthenticatedState(), adminOnly, RedirectToLogin},
		{"signed out on open route", domain.UnauthenticatedState(), 0, RedirectToLogin},
		{"initial state", domain.InitialSessionState(), 0, RedirectToLogin},
		{"any role on open route", sessionWith(domain.RoleUser), 0, Allow},
		{"no role on open route", sessionWith(domain.RoleNone), 0, Allow},
		{"no role on admin route", sessionWith(domain.RoleNone), adminOnly, RedirectToDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.session, tt.required); got != tt.want {
				t.Fatalf("Authorize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAuthorize_LoadingKeepsIdentity(t *testing.T) {
	s := sessionWith(domain.RoleAdmin).Loading()
	if got := Authorize(s, domain.Roles(domain.RoleAdmin)); got != Allow {
		t.Fatalf("Authorize() during refresh = %s, want allow", got)
	}
}

func TestAuthorizePermission(t *testing.T) {
	tests := []struct {
		role domain.Role
		perm domain.Permission
		want Decision
	}{
		{domain.RoleUser, domain.PermViewContent, Allow},
		{domain.RoleUser, domain.PermCreateContent, RedirectToDefault},
		{domain.RoleAdmin, domain.PermPublishContent, Allow},
		{domain.RoleAdmin, domain.PermEditContent, RedirectToDefault},
		{domain.RoleAdmin, domain.PermDeleteContent, RedirectToDefault},
		{domain.RoleSuperAdmin, domain.PermDeleteContent, Allow},
	}
	for _, tt := range tests {
		if got := AuthorizePermission(sessionWith(tt.role), tt.perm); got != tt.want {
			t.Errorf("%s/%s = %s, want %s", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestDecisionError(t *testing.T) {
	if err := DecisionError(Allow); err != nil {
		t.Fatalf("Allow: unexpected error %v", err)
	}
	if err := DecisionError(RedirectToLogin); err != domain.ErrNotAuthenticated {
		t.Fatalf("RedirectToLogin: got %v", err)
	}
	if err := DecisionError(RedirectToDefault); err != domain.ErrForbidden {
		t.Fatalf("RedirectToDefault: got %v", err)
	}
}
