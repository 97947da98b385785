package domain

// Credential is the opaque bearer token issued by the remote auth service.
// The client never parses it.
type Credential string

// UserRecord is the signed-in user as the dashboard knows it. Role is
// RoleNone until reconciled against the role service.
type UserRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}

// Valid reports whether the record carries the fields every session needs.
func (u UserRecord) Valid() bool {
	return u.ID != "" && u.Email != ""
}

// AuthResult is a normalized login or registration response.
type AuthResult struct {
	Credential Credential
	User       UserRecord
}

// StoredSession is the credential/user pair kept by the persistent store.
type StoredSession struct {
	Credential Credential
	User       UserRecord
}

// Registration is the payload for creating an account.
type Registration struct {
	DisplayName     string
	Email           string
	Password        string
	ConfirmPassword string
}
