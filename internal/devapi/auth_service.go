package devapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// UserRepository is the account storage AuthService needs.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
}

// Claims is the JWT payload. Subject holds the user id and ID the token id
// used for revocation.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

// AuthService implements registration, login and token lifecycle.
type AuthService struct {
	repo      UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewAuthService(repo UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		revoked:   make(map[string]time.Time),
	}
}

// Register creates a User-role account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || !strings.Contains(email, "@") || len(password) < 6 {
		return "", nil, ErrInvalidSignup
	}
	user, err := s.CreateAccount(ctx, name, email, password, domain.RoleUser)
	if err != nil {
		return "", nil, err
	}
	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CreateAccount stores a new account with the given role. It is also used
// for seeding.
func (s *AuthService) CreateAccount(ctx context.Context, name, email, password string, role domain.Role) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &User{
		Username:     strings.SplitN(email, "@", 2)[0],
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.CreateUser(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate parses and checks a bearer token.
func (s *AuthService) Authenticate(token string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrUnauthorized
	}
	if s.isRevoked(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// CurrentUser loads the account claims belong to.
func (s *AuthService) CurrentUser(ctx context.Context, claims *Claims) (*User, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.FindByID(ctx, id)
}

// Revoke invalidates the token claims were read from until it expires.
func (s *AuthService) Revoke(claims *Claims) {
	exp := time.Now().Add(s.tokenTTL)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[claims.ID] = exp
	s.pruneLocked(time.Now())
}

// Refresh issues a new token for the same user and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, claims *Claims) (string, error) {
	user, err := s.CurrentUser(ctx, claims)
	if err != nil {
		return "", err
	}
	token, err := s.generateToken(user)
	if err != nil {
		return "", err
	}
	s.Revoke(claims)
	return token, nil
}

func (s *AuthService) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

// pruneLocked forgets revocations of tokens that have expired anyway.
func (s *AuthService) pruneLocked(now time.Time) {
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
}

func (s *AuthService) generateToken(user *User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}
