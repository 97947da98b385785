package domain

import (
	"errors"
	"sort"
	"strings"
)

// Remote-call failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidationFailed   = errors.New("validation failed")
	ErrUnreachable        = errors.New("remote service unreachable")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Client-side failures.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrForbidden           = errors.New("access forbidden")
	ErrContentNotFound     = errors.New("content not found")
	ErrOperationInProgress = errors.New("session operation already in progress")
	ErrSuperseded          = errors.New("session operation superseded")
	ErrNoStoredSession     = errors.New("no stored session")
)

// ValidationError carries per-field messages. It matches ErrValidationFailed
// under errors.Is.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Message == "" {
			return ErrValidationFailed.Error()
		}
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
