package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/ports"
)

const (
	defaultOperationTimeout = 15 * time.Second
	storeTimeout            = 5 * time.Second
)

// Publisher receives every state the controller settles into or passes
// through. Publish must not block.
type Publisher interface {
	Publish(domain.SessionState)
	Subscribe(buffer int) (<-chan domain.SessionState, func())
}

// SessionController owns the client session. All mutating operations are
// serialized: while one is in flight the others fail with
// domain.ErrOperationInProgress, except Logout, which cancels the in-flight
// operation and discards its result.
type SessionController struct {
	gateway   ports.AuthGateway
	roles     ports.RoleResolver
	store     ports.SessionStore
	events    Publisher
	validator *FormValidator
	timeout   time.Duration
	log       zerolog.Logger

	mu      sync.Mutex
	state   domain.SessionState
	gen     uint64
	cancel  context.CancelFunc
	version uint64
}

// SessionControllerOptions groups the collaborators of a SessionController.
type SessionControllerOptions struct {
	Gateway   ports.AuthGateway
	Roles     ports.RoleResolver
	Store     ports.SessionStore
	Events    Publisher
	Validator *FormValidator
	// Timeout bounds each operation's remote calls. Defaults to 15s.
	Timeout time.Duration
	Logger  zerolog.Logger
}

func NewSessionController(opts SessionControllerOptions) *SessionController {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultOperationTimeout
	}
	if opts.Validator == nil {
		opts.Validator = NewFormValidator()
	}
	return &SessionController{
		gateway:   opts.Gateway,
		roles:     opts.Roles,
		store:     opts.Store,
		events:    opts.Events,
		validator: opts.Validator,
		timeout:   opts.Timeout,
		log:       opts.Logger.With().Str("component", "session").Logger(),
		state:     domain.InitialSessionState(),
	}
}

// State returns the current snapshot.
func (c *SessionController) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers for state snapshots.
func (c *SessionController) Subscribe(buffer int) (<-chan domain.SessionState, func()) {
	return c.events.Subscribe(buffer)
}

// Initialize recovers a saved session. It runs once; later calls return the
// current state. It never fails: every failure path settles Unauthenticated
// with persistent storage cleared.
func (c *SessionController) Initialize(ctx context.Context) domain.SessionState {
	c.mu.Lock()
	if c.state.Status != domain.StatusUninitialized || c.cancel != nil {
		s := c.state
		c.mu.Unlock()
		return s
	}
	opCtx, gen := c.beginLocked(ctx)
	c.mu.Unlock()

	r := c.recover(opCtx)

	s, err := c.commit(gen, func(domain.SessionState) domain.SessionState {
		switch {
		case r.clear:
			c.clearStore(ctx)
		case r.save:
			if err := c.saveStore(ctx, r.state.Credential, *r.state.User); err != nil {
				c.log.Warn().Err(err).Msg("persist recovered session")
			}
		}
		return r.state
	})
	if err != nil {
		return c.State()
	}
	c.log.Info().Str("status", string(s.Status)).Msg("session initialized")
	return s
}

// recovery is the outcome of reading back a stored session. The store write
// it calls for is applied only if the Initialize that produced it commits.
type recovery struct {
	state domain.SessionState
	save  bool
	clear bool
}

// recover loads, verifies and reconciles the stored session. It reads the
// store but never writes it.
func (c *SessionController) recover(ctx context.Context) recovery {
	stored, err := c.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoStoredSession) {
			return recovery{state: domain.UnauthenticatedState()}
		}
		c.log.Warn().Err(err).Msg("load stored session")
		return recovery{state: domain.UnauthenticatedState(), clear: true}
	}

	user, err := c.gateway.Verify(ctx, stored.Credential)
	if err != nil {
		c.log.Info().Err(err).Msg("stored session rejected")
		return recovery{state: domain.UnauthenticatedState(), clear: true}
	}
	if !user.Valid() {
		user.ID, user.Email = firstNonEmpty(user.ID, stored.User.ID), firstNonEmpty(user.Email, stored.User.Email)
	}
	user.Role = c.reconcileRole(ctx, stored.Credential, user)

	return recovery{state: domain.AuthenticatedState(stored.Credential, user), save: true}
}

// Login authenticates against the remote service. On failure the session is
// signed out, persistent storage is left untouched and the typed error is
// returned for display.
func (c *SessionController) Login(ctx context.Context, email, password string) (domain.SessionState, error) {
	if err := c.validator.Validate(LoginForm{Email: email, Password: password}); err != nil {
		return c.State(), err
	}
	opCtx, gen, err := c.begin(ctx)
	if err != nil {
		return c.State(), err
	}

	res, err := c.gateway.Login(opCtx, email, password)
	return c.settleAuth(ctx, opCtx, gen, "login", res, err)
}

// Register creates an account and signs it in. Local checks run first so
// locally detectable mistakes never cost a round trip.
func (c *SessionController) Register(ctx context.Context, reg domain.Registration) (domain.SessionState, error) {
	form := RegisterForm{
		Name:            reg.DisplayName,
		Email:           reg.Email,
		Password:        reg.Password,
		ConfirmPassword: reg.ConfirmPassword,
	}
	if err := c.validator.Validate(form); err != nil {
		return c.State(), err
	}
	opCtx, gen, err := c.begin(ctx)
	if err != nil {
		return c.State(), err
	}

	res, err := c.gateway.Register(opCtx, reg)
	return c.settleAuth(ctx, opCtx, gen, "register", res, err)
}

func (c *SessionController) settleAuth(ctx, opCtx context.Context, gen uint64, op string, res domain.AuthResult, authErr error) (domain.SessionState, error) {
	if authErr == nil {
		res.User.Role = c.reconcileRole(opCtx, res.Credential, res.User)
	}
	authErr = remoteError(opCtx, authErr)

	s, err := c.commit(gen, func(domain.SessionState) domain.SessionState {
		if authErr != nil {
			return domain.UnauthenticatedState()
		}
		if err := c.saveStore(ctx, res.Credential, res.User); err != nil {
			c.log.Warn().Err(err).Str("op", op).Msg("persist session")
		}
		return domain.AuthenticatedState(res.Credential, res.User)
	})
	if err != nil {
		return s, err
	}
	if authErr != nil {
		c.log.Info().Err(authErr).Str("op", op).Msg("authentication failed")
		return s, authErr
	}
	c.log.Info().Str("op", op).Str("user_id", res.User.ID).Str("role", res.User.Role.String()).Msg("signed in")
	return s, nil
}

// Logout always ends signed out with persistent storage cleared. The remote
// call is best-effort. An operation already in flight is cancelled and its
// result discarded.
func (c *SessionController) Logout(ctx context.Context) domain.SessionState {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.log.Debug().Msg("logout superseded in-flight session operation")
	}
	cred := c.state.Credential
	if !c.state.IsAuthenticated {
		cred = ""
	}
	opCtx, gen := c.beginLocked(ctx)
	c.mu.Unlock()

	if cred != "" {
		if err := c.gateway.Logout(opCtx, cred); err != nil {
			c.log.Warn().Err(remoteError(opCtx, err)).Msg("remote logout failed, continuing local teardown")
		}
	}

	s, err := c.commit(gen, func(domain.SessionState) domain.SessionState {
		c.clearStore(ctx)
		return domain.UnauthenticatedState()
	})
	if err != nil {
		// A later Logout took over; it performs the same teardown.
		return c.State()
	}
	c.log.Info().Msg("signed out")
	return s
}

// RefreshUserRole re-resolves the current user's role and republishes the
// record. Signed out, it is a no-op returning nil. A failed lookup leaves the
// role unchanged.
func (c *SessionController) RefreshUserRole(ctx context.Context) (*domain.UserRecord, error) {
	c.mu.Lock()
	if !c.state.IsAuthenticated || c.state.User == nil {
		c.mu.Unlock()
		return nil, nil
	}
	if c.cancel != nil {
		c.mu.Unlock()
		return nil, domain.ErrOperationInProgress
	}
	cred, user := c.state.Credential, *c.state.User
	opCtx, gen := c.beginLocked(ctx)
	c.mu.Unlock()

	role, resolveErr := c.roles.Resolve(opCtx, cred, user.ID)
	if resolveErr != nil {
		c.log.Warn().Err(remoteError(opCtx, resolveErr)).Str("user_id", user.ID).Msg("role refresh failed, keeping current role")
	} else {
		user.Role = role
	}

	s, err := c.commit(gen, func(domain.SessionState) domain.SessionState {
		if resolveErr == nil {
			if err := c.saveStore(ctx, cred, user); err != nil {
				c.log.Warn().Err(err).Msg("persist refreshed role")
			}
		}
		return domain.AuthenticatedState(cred, user)
	})
	if err != nil {
		return nil, err
	}
	return s.User, nil
}

// RefreshCredential asks the remote service for a renewed token. On failure
// the session is left as it was.
func (c *SessionController) RefreshCredential(ctx context.Context) (domain.SessionState, error) {
	c.mu.Lock()
	if !c.state.IsAuthenticated || c.state.User == nil {
		s := c.state
		c.mu.Unlock()
		return s, domain.ErrNotAuthenticated
	}
	if c.cancel != nil {
		s := c.state
		c.mu.Unlock()
		return s, domain.ErrOperationInProgress
	}
	cred, user := c.state.Credential, *c.state.User
	opCtx, gen := c.beginLocked(ctx)
	c.mu.Unlock()

	renewed, ok := c.gateway.Refresh(opCtx, cred)
	if !ok {
		c.log.Info().Msg("credential refresh declined, keeping current credential")
		renewed = cred
	}

	return c.commit(gen, func(domain.SessionState) domain.SessionState {
		if renewed != cred {
			if err := c.saveStore(ctx, renewed, user); err != nil {
				c.log.Warn().Err(err).Msg("persist refreshed credential")
			}
		}
		return domain.AuthenticatedState(renewed, user)
	})
}

// reconcileRole returns the resolver's role for user. A failed lookup
// degrades to RoleNone, never to the possibly stale embedded role.
func (c *SessionController) reconcileRole(ctx context.Context, cred domain.Credential, user domain.UserRecord) domain.Role {
	role, err := c.roles.Resolve(ctx, cred, user.ID)
	if err != nil {
		c.log.Warn().Err(remoteError(ctx, err)).Str("user_id", user.ID).Msg("role lookup failed, no elevated permissions")
		return domain.RoleNone
	}
	if role != user.Role {
		c.log.Debug().Str("user_id", user.ID).Str("embedded", user.Role.String()).Str("resolved", role.String()).Msg("role reconciled")
	}
	return role
}

// begin starts a rejectable operation.
func (c *SessionController) begin(ctx context.Context) (context.Context, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil, 0, domain.ErrOperationInProgress
	}
	opCtx, gen := c.beginLocked(ctx)
	return opCtx, gen, nil
}

// beginLocked claims the next generation and publishes Loading. c.mu must be
// held.
func (c *SessionController) beginLocked(ctx context.Context) (context.Context, uint64) {
	c.gen++
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	c.cancel = cancel
	c.publishLocked(c.state.Loading())
	return opCtx, c.gen
}

// commit settles the operation with generation gen. If a newer operation has
// started since, nothing is written and domain.ErrSuperseded is returned.
// Every store write happens inside next, under c.mu, so a superseded
// operation never touches persisted state.
func (c *SessionController) commit(gen uint64, next func(prev domain.SessionState) domain.SessionState) (domain.SessionState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return c.state, domain.ErrSuperseded
	}
	c.cancel()
	c.cancel = nil
	c.publishLocked(next(c.state))
	return c.state, nil
}

func (c *SessionController) publishLocked(s domain.SessionState) {
	c.version++
	s.Version = c.version
	c.state = s
	if c.events != nil {
		c.events.Publish(s)
	}
}

func (c *SessionController) saveStore(ctx context.Context, cred domain.Credential, user domain.UserRecord) error {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := c.store.Save(sctx, cred, user); err != nil {
		// Never leave an older pair behind that could be revived on restart.
		if cerr := c.store.Clear(sctx); cerr != nil {
			c.log.Error().Err(cerr).Msg("clear session store after failed save")
		}
		return err
	}
	return nil
}

func (c *SessionController) clearStore(ctx context.Context) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := c.store.Clear(sctx); err != nil {
		c.log.Warn().Err(err).Msg("clear session store")
	}
}

// remoteError maps an expired operation deadline to ErrUnreachable.
func remoteError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrUnreachable) {
		return errors.Join(domain.ErrUnreachable, err)
	}
	return err
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
