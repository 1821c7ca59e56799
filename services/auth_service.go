package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/studio-portfolio-backend/errs"
	"github.com/rpupo63/studio-portfolio-backend/models"
)

const minPasswordLength = 8

// Claims is the payload of a session token. Subject holds the user id.
type Claims struct {
	Name string      `json:"name"`
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

type Session struct {
	Token     string      `json:"token"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type AuthService struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	logger zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

type AuthOption func(*AuthService)

// WithBcryptCost sets the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) {
		s.cost = cost
	}
}

func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func NewAuthService(users UserStore, secret string, ttl time.Duration, logger zerolog.Logger, opts ...AuthOption) (*AuthService, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	s := &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		logger: logger.With().Str("service", "auth").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL is how long an issued session stays valid.
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Setup creates the first admin account. Once any admin exists it is refused.
func (s *AuthService) Setup(ctx context.Context, name, password string) (*models.User, error) {
	name = strings.TrimSpace(name)

	fields := errs.FieldErrors{}
	if name == "" {
		fields.Add("name", "Name is required")
	}
	if password == "" {
		fields.Add("password", "Password is required")
	} else if len(password) < minPasswordLength {
		fields.Add("password", "Password must be at least 8 characters")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	admins, err := s.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "admins", err)
	}
	if admins > 0 {
		return nil, errs.NewConflictError("an admin account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to hash password", err)
	}

	user := &models.User{Name: name, PasswordHash: string(hash), Role: models.RoleAdmin}
	if err := s.users.Add(ctx, user); err != nil {
		return nil, errs.NewDatabaseError("create", "user", err)
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("admin account created")
	return user, nil
}

// Login checks the credentials and issues a session. Every failure returns the
// same invalid-credentials error.
func (s *AuthService) Login(ctx context.Context, name, password string) (*Session, error) {
	user, err := s.users.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		s.logger.Debug().Msg("login failed")
		return nil, errs.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Msg("login failed")
		return nil, errs.NewInvalidCredentialsError()
	}

	return s.issue(user)
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	})
	return s.dummyHash
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Name: user.Name,
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to sign session", err)
	}

	return &Session{Token: token, Name: user.Name, Role: user.Role, ExpiresAt: expiresAt}, nil
}

// ParseToken verifies a session token and returns its claims.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.NewExpiredTokenError()
		}
		return nil, errs.NewInvalidTokenError(err)
	}

	role, err := models.ParseRole(string(claims.Role))
	if err != nil {
		return nil, errs.NewInvalidTokenError(err)
	}
	claims.Role = role
	return claims, nil
}
