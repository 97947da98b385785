package service

import (
	"context"
	"sync"

	"github.com/inkwell/dashboard/internal/core/domain"
)

type stubGateway struct {
	loginFn    func(ctx context.Context, email, password string) (domain.AuthResult, error)
	registerFn func(ctx context.Context, reg domain.Registration) (domain.AuthResult, error)
	verifyFn   func(ctx context.Context, cred domain.Credential) (domain.UserRecord, error)
	logoutFn   func(ctx context.Context, cred domain.Credential) error
	refreshFn  func(ctx context.Context, cred domain.Credential) (domain.Credential, bool)

	mu          sync.Mutex
	loginCalls  int
	logoutCalls []domain.Credential
}

func (g *stubGateway) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	g.mu.Lock()
	g.loginCalls++
	g.mu.Unlock()
	return g.loginFn(ctx, email, password)
}

func (g *stubGateway) Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error) {
	return g.registerFn(ctx, reg)
}

func (g *stubGateway) Verify(ctx context.Context, cred domain.Credential) (domain.UserRecord, error) {
	return g.verifyFn(ctx, cred)
}

func (g *stubGateway) Logout(ctx context.Context, cred domain.Credential) error {
	g.mu.Lock()
	g.logoutCalls = append(g.logoutCalls, cred)
	g.mu.Unlock()
	if g.logoutFn == nil {
		return nil
	}
	return g.logoutFn(ctx, cred)
}

func (g *stubGateway) Refresh(ctx context.Context, cred domain.Credential) (domain.Credential, bool) {
	if g.refreshFn == nil {
		return "", false
	}
	return g.refreshFn(ctx, cred)
}

type stubRoles struct {
	mu    sync.Mutex
	roles map[string]domain.Role
	err   error
	// resolveFn, when set, replaces the table lookup.
	resolveFn func(ctx context.Context, cred domain.Credential, userID string) (domain.Role, error)
}

func newStubRoles(roles map[string]domain.Role) *stubRoles {
	return &stubRoles{roles: roles}
}

func (r *stubRoles) set(userID string, role domain.Role, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[userID] = role
	r.err = err
}

func (r *stubRoles) Resolve(ctx context.Context, cred domain.Credential, userID string) (domain.Role, error) {
	r.mu.Lock()
	fn := r.resolveFn
	r.mu.Unlock()
	if fn != nil {
		return fn(ctx, cred, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.RoleNone, r.err
	}
	return r.roles[userID], nil
}

// memStore is an in-memory SessionStore.
type memStore struct {
	mu      sync.Mutex
	stored  *domain.StoredSession
	loadErr error
	saveErr error
	clears  int
}

func (s *memStore) Save(_ context.Context, cred domain.Credential, user domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.stored = &domain.StoredSession{Credential: cred, User: user}
	return nil
}

func (s *memStore) Load(_ context.Context) (domain.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.StoredSession{}, s.loadErr
	}
	if s.stored == nil {
		return domain.StoredSession{}, domain.ErrNoStoredSession
	}
	return *s.stored, nil
}

func (s *memStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = nil
	s.clears++
	return nil
}

func (s *memStore) snapshot() *domain.StoredSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		return nil
	}
	cp := *s.stored
	return &cp
}

// recordingPublisher keeps every published state.
type recordingPublisher struct {
	mu     sync.Mutex
	states []domain.SessionState
	subs   []chan domain.SessionState
}

func (p *recordingPublisher) Publish(s domain.SessionState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, s)
	for _, ch := range p.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

func (p *recordingPublisher) Subscribe(buffer int) (<-chan domain.SessionState, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan domain.SessionState, buffer)
	p.subs = append(p.subs, ch)
	return ch, func() {}
}

func (p *recordingPublisher) published() []domain.SessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.SessionState(nil), p.states...)
}
