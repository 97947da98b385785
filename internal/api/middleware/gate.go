package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/api/metrics"
	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/ports"
	"github.com/inkwell/dashboard/internal/core/service"
)

const sessionKey = "session"

// Gate evaluates the route authorization decision for every request.
//
// Paths found in the route table are checked against their role set; any
// other guarded path only needs an authenticated session. A GET that is not
// allowed is redirected to the decision's target, other methods fail with
// the matching domain error. The evaluated snapshot is stored on the context
// so the handler sees the same session the gate did.
func Gate(session ports.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := session.State()

			label := c.Path()
			var required domain.RoleSet
			if r, ok := service.LookupRoute(c.Request().URL.Path); ok {
				label = r.Pattern
				required = r.Roles
			}

			d := service.Authorize(st, required)
			metrics.RouteDecisionsTotal.WithLabelValues(label, d.String()).Inc()

			if d != service.Allow {
				if isNavigation(c.Request()) {
					return c.Redirect(http.StatusFound, service.RedirectTarget(d))
				}
				return service.DecisionError(d)
			}

			c.Set(sessionKey, st)
			return next(c)
		}
	}
}

// GuestOnly sends authenticated sessions away from the login and register
// pages to the default route.
func GuestOnly(session ports.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := session.State()
			if st.IsAuthenticated && isNavigation(c.Request()) {
				return c.Redirect(http.StatusFound, service.DefaultPath)
			}
			c.Set(sessionKey, st)
			return next(c)
		}
	}
}

// SessionFrom returns the snapshot stored by Gate or GuestOnly.
func SessionFrom(c echo.Context) (domain.SessionState, bool) {
	st, ok := c.Get(sessionKey).(domain.SessionState)
	return st, ok
}

func isNavigation(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}
