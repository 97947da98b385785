package domain

// SessionStatus is the phase of the session state machine.
type SessionStatus string

const (
	StatusUninitialized   SessionStatus = "uninitialized"
	StatusLoading         SessionStatus = "loading"
	StatusAuthenticated   SessionStatus = "authenticated"
	StatusUnauthenticated SessionStatus = "unauthenticated"
)

// SessionState is an immutable snapshot of the client session. A new value
// is published on every transition; it is never patched in place.
//
// IsAuthenticated is true only when User and Credential are both set and the
// last verification against the remote service succeeded.
type SessionState struct {
	Status          SessionStatus `json:"status"`
	User            *UserRecord   `json:"user"`
	Credential      Credential    `json:"-"`
	IsAuthenticated bool          `json:"isAuthenticated"`
	IsLoading       bool          `json:"isLoading"`
	Version         uint64        `json:"version"`
}

// InitialSessionState is the state at process start, before Initialize.
func InitialSessionState() SessionState {
	return SessionState{Status: StatusUninitialized, IsLoading: true}
}

// UnauthenticatedState returns a settled, signed-out state.
func UnauthenticatedState() SessionState {
	return SessionState{Status: StatusUnauthenticated}
}

// AuthenticatedState returns a settled, signed-in state for the pair.
func AuthenticatedState(cred Credential, user UserRecord) SessionState {
	return SessionState{
		Status:          StatusAuthenticated,
		User:            &user,
		Credential:      cred,
		IsAuthenticated: true,
	}
}

// Loading returns s marked as having an operation in flight. The identity
// fields are kept so the UI does not flicker to signed-out during a refresh.
func (s SessionState) Loading() SessionState {
	s.Status = StatusLoading
	s.IsLoading = true
	return s
}

// Role returns the current user's role, or RoleNone when signed out.
func (s SessionState) Role() Role {
	if !s.IsAuthenticated || s.User == nil {
		return RoleNone
	}
	return s.User.Role
}

// Can reports whether the session may perform p.
func (s SessionState) Can(p Permission) bool {
	return s.IsAuthenticated && s.User != nil && p.Grants(s.User.Role)
}
