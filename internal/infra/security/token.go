package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookwise/booking-platform/internal/core/domain"
)

const defaultTokenTTL = 5 * time.Hour

// TokenClaims augments registered claims with the principal's identity and role.
type TokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens against a single
// shared secret. Stateless; safe for concurrent use.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService. TTL falls back to five hours
// when unset, matching the session length the frontend expects.
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock overrides the service clock for deterministic testing.
func (s *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Issue signs the principal's claims into a bearer token with a fixed expiry.
func (s *TokenService) Issue(principal domain.Principal) (string, error) {
	if principal.ID == "" {
		return "", fmt.Errorf("principal id is required")
	}

	now := s.now()
	claims := TokenClaims{
		UserID: principal.ID,
		Role:   string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Resolve verifies the token signature and expiry and decodes the principal.
// Any malformed, tampered, or expired token reports domain.ErrUnauthenticated.
func (s *TokenService) Resolve(tokenString string) (domain.Principal, error) {
	if strings.TrimSpace(tokenString) == "" {
		return domain.Principal{}, fmt.Errorf("%w: no token provided", domain.ErrUnauthenticated)
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, fmt.Errorf("%w: token expired", domain.ErrUnauthenticated)
		}
		return domain.Principal{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	if !token.Valid {
		return domain.Principal{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.UserID == "" {
		return domain.Principal{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}

	return domain.Principal{ID: claims.UserID, Role: role}, nil
}
