package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/api/middleware"
	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/ports"
)

// ctxSession returns the snapshot the gate evaluated for this request, or
// the current one when the route is not gated.
func ctxSession(c echo.Context, reader ports.SessionReader) domain.SessionState {
	if st, ok := middleware.SessionFrom(c); ok {
		return st
	}
	return reader.State()
}

// permissions lists the content actions the session may take.
type permissions struct {
	Create  bool `json:"create"`
	Edit    bool `json:"edit"`
	Publish bool `json:"publish"`
	Delete  bool `json:"delete"`
}

func permissionsFor(st domain.SessionState) permissions {
	return permissions{
		Create:  st.Can(domain.PermCreateContent),
		Edit:    st.Can(domain.PermEditContent),
		Publish: st.Can(domain.PermPublishContent),
		Delete:  st.Can(domain.PermDeleteContent),
	}
}
