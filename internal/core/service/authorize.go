package service

import "github.com/inkwell/dashboard/internal/core/domain"

// Decision is the outcome of a route authorization check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToDefault
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_login"
	case RedirectToDefault:
		return "redirect_default"
	default:
		return "unknown"
	}
}

// Authorize decides whether session may enter a route requiring one of
// required. An empty set admits any authenticated user. It has no side
// effects and is meant to be evaluated on every navigation.
func Authorize(session domain.SessionState, required domain.RoleSet) Decision {
	if !session.IsAuthenticated || session.User == nil {
		return RedirectToLogin
	}
	if !required.Empty() && !required.Contains(session.User.Role) {
		return RedirectToDefault
	}
	return Allow
}

// AuthorizePermission is Authorize against a permission's allow-list.
func AuthorizePermission(session domain.SessionState, p domain.Permission) Decision {
	return Authorize(session, p.RequiredRoles())
}

// DecisionError converts a non-Allow decision into the matching domain error.
func DecisionError(d Decision) error {
	switch d {
	case Allow:
		return nil
	case RedirectToLogin:
		return domain.ErrNotAuthenticated
	default:
		return domain.ErrForbidden
	}
}
