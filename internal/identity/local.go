package identity

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"

	"github.com/brightpath/guidance-service/internal/config"
	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/repository"
)

// LocalClaims is the token payload issued by the local provider. The
// assurance-level claim mirrors what the managed provider embeds.
type LocalClaims struct {
	Email          string             `json:"email"`
	AssuranceLevel string             `json:"aal"`
	AppMetadata    domain.AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

// LocalProvider issues and validates HS256 tokens against the local
// users table. Development only; production validates against the
// managed identity service.
type LocalProvider struct {
	users      repository.LocalUserRepository
	secret     []byte
	ttl        time.Duration
	bcryptCost int
}

// NewLocalProvider builds the provider.
func NewLocalProvider(cfg config.IdentityConfig, users repository.LocalUserRepository) *LocalProvider {
	ttlMinutes := cfg.AccessTokenTTLMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &LocalProvider{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		ttl:        time.Duration(ttlMinutes) * time.Minute,
		bcryptCost: cfg.BcryptCost,
	}
}

// Login authenticates by email and password and returns a signed token.
// Password logins carry assurance level aal1.
func (p *LocalProvider) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, ErrInvalidToken
		}
		return "", time.Time{}, err
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, ErrInvalidToken
	}

	expiresAt := time.Now().Add(p.ttl)
	claims := &LocalClaims{
		Email:          user.Email,
		AssuranceLevel: "aal1",
		AppMetadata:    user.AppMetadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Register creates a local account.
func (p *LocalProvider) Register(ctx context.Context, email, password string, meta domain.AppMetadata) (*domain.LocalUser, error) {
	if _, err := p.users.GetByEmail(ctx, email); err == nil {
		return nil, errors.New("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.LocalUser{
		Email:        email,
		PasswordHash: hash,
		AppMetadata:  meta,
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResolveToken validates a locally issued token and loads the account.
func (p *LocalProvider) ResolveToken(ctx context.Context, token string) (*domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &LocalClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*LocalClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	user, err := p.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return &domain.Identity{
		ID:          user.ID,
		Email:       user.Email,
		AppMetadata: user.AppMetadata,
	}, nil
}
