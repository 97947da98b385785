package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSessionState_Constructors(t *testing.T) {
	initial := InitialSessionState()
	if initial.Status != StatusUninitialized || !initial.IsLoading || initial.IsAuthenticated {
		t.Fatalf("unexpected initial state: %+v", initial)
	}

	unauth := UnauthenticatedState()
	if unauth.IsLoading || unauth.IsAuthenticated || unauth.User != nil || unauth.Credential != "" {
		t.Fatalf("unexpected unauthenticated state: %+v", unauth)
	}

	auth := AuthenticatedState("tok", UserRecord{ID: "1", Email: "a@example.com", Role: RoleAdmin})
	if !auth.IsAuthenticated || auth.IsLoading || auth.User == nil || auth.Credential != "tok" {
		t.Fatalf("unexpected authenticated state: %+v", auth)
	}

	loading := auth.Loading()
	if !loading.IsLoading || loading.Status != StatusLoading || !loading.IsAuthenticated {
		t.Fatalf("loading should keep identity: %+v", loading)
	}
	if auth.IsLoading {
		t.Fatalf("Loading must not mutate the receiver")
	}
}

func TestSessionState_Can(t *testing.T) {
	admin := AuthenticatedState("tok", UserRecord{ID: "1", Email: "a@example.com", Role: RoleAdmin})
	if !admin.Can(PermPublishContent) {
		t.Fatalf("admin should publish")
	}
	if admin.Can(PermDeleteContent) {
		t.Fatalf("admin must not delete")
	}
	if UnauthenticatedState().Can(PermViewContent) {
		t.Fatalf("signed-out session must not view content")
	}
	if got := UnauthenticatedState().Role(); got != RoleNone {
		t.Fatalf("expected RoleNone, got %v", got)
	}
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("register: %w", &ValidationError{Fields: map[string]string{
		"password": "password must be at least 6 characters",
		"email":    "email must be a valid email",
	}})

	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected errors.Is ErrValidationFailed")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected errors.As *ValidationError")
	}
	want := "email must be a valid email; password must be at least 6 characters"
	if ve.Error() != want {
		t.Fatalf("got %q, want %q", ve.Error(), want)
	}
	if (&ValidationError{}).Error() != ErrValidationFailed.Error() {
		t.Fatalf("empty validation error should fall back to sentinel text")
	}
}

func TestContentStatus_Toggled(t *testing.T) {
	if ContentStatusDraft.Toggled() != ContentStatusPublished || ContentStatusPublished.Toggled() != ContentStatusDraft {
		t.Fatalf("toggle mismatch")
	}
	if ContentStatus("archived").Valid() {
		t.Fatalf("unknown status must be invalid")
	}
}
