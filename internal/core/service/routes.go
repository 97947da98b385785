package service

import (
	"strings"

	"github.com/inkwell/dashboard/internal/core/domain"
)

const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	DefaultPath  = "/dashboard"
)

// Route is an entry of the dashboard's static route table.
type Route struct {
	Pattern string
	Roles   domain.RoleSet
	// NavLabel is empty for routes that are not shown in navigation.
	NavLabel string
}

// Routes is the guarded route table, in navigation order.
var Routes = []Route{
	{Pattern: "/dashboard", NavLabel: "Dashboard"},
	{Pattern: "/content", NavLabel: "Content"},
	{Pattern: "/content/create", Roles: domain.PermCreateContent.RequiredRoles(), NavLabel: "Create Content"},
	{Pattern: "/content/edit/:id", Roles: domain.PermEditContent.RequiredRoles()},
}

// LookupRoute finds the route matching path. Segments starting with ':'
// match any single non-empty segment.
func LookupRoute(path string) (Route, bool) {
	for _, r := range Routes {
		if matchPattern(r.Pattern, path) {
			return r, true
		}
	}
	return Route{}, false
}

func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

// NavItem is a navigation entry visible to the current session.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Navigation returns the nav entries session may follow.
func Navigation(session domain.SessionState) []NavItem {
	items := []NavItem{}
	for _, r := range Routes {
		if r.NavLabel == "" {
			continue
		}
		if Authorize(session, r.Roles) == Allow {
			items = append(items, NavItem{Label: r.NavLabel, Path: r.Pattern})
		}
	}
	return items
}

// RedirectTarget returns where a non-Allow decision sends the user.
func RedirectTarget(d Decision) string {
	if d == RedirectToLogin {
		return LoginPath
	}
	return DefaultPath
}

// RoleMessage is the dashboard greeting for role.
func RoleMessage(role domain.Role) string {
	switch role {
	case domain.RoleSuperAdmin:
		return "As a Super Admin, you have full control over all content. You can create, edit, publish, and manage all aspects of the platform."
	case domain.RoleAdmin:
		return "As an Admin, you can create and publish content for users to view."
	case domain.RoleUser:
		return "As a User, you can browse and view all published content."
	default:
		return "Welcome to the Content Publishing Platform."
	}
}
