package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/repository"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to probe for accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates a registration against an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound indicates the account no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrWeakPassword indicates a registration password failing policy.
	ErrWeakPassword = errors.New("password does not meet requirements")
)

// LoginResult is the two-phase outcome of a login: the session is issued once
// credentials check out, and the event fan-out is attempted afterwards. A
// fan-out failure never invalidates the session.
type LoginResult struct {
	Token string
	User  domain.PublicProfile
	// FanOutErr carries the broker-side failure, if any. Nil means the
	// login event reached the broker.
	FanOutErr error
}

// AuthService implements account registration, credential login, and the
// profile operations behind the authenticated API surface.
type AuthService struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	policy port.PasswordPolicyValidator
	issuer port.TokenIssuer
	tokens port.TokenVerifier
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService wires the authentication use cases.
func NewAuthService(
	users port.UserRepository,
	hasher port.PasswordHasher,
	policy port.PasswordPolicyValidator,
	issuer port.TokenIssuer,
	tokens port.TokenVerifier,
	events port.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		hasher: hasher,
		policy: policy,
		issuer: issuer,
		tokens: tokens,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock for deterministic testing.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Resolve verifies a bearer token into a request principal.
func (s *AuthService) Resolve(token string) (domain.Principal, error) {
	return s.tokens.Resolve(token)
}

// Verify resolves a bearer token and returns the account behind it. Clients
// call this on startup to restore a stored session. A token for a deleted
// account is rejected even when its signature still checks out.
func (s *AuthService) Verify(ctx context.Context, token string) (domain.PublicProfile, error) {
	principal, err := s.tokens.Resolve(token)
	if err != nil {
		return domain.PublicProfile{}, err
	}
	return s.Profile(ctx, principal.ID)
}

// Register creates a new account record.
func (s *AuthService) Register(ctx context.Context, fullName, phone, email, password, role string) (domain.PublicProfile, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if fullName == "" || email == "" || password == "" {
		return domain.PublicProfile{}, fmt.Errorf("fullName, email, and password are required")
	}

	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return domain.PublicProfile{}, fmt.Errorf("invalid role: %w", err)
	}

	if s.policy != nil {
		if err := s.policy.Validate(password, email, fullName); err != nil {
			return domain.PublicProfile{}, fmt.Errorf("%w: %v", ErrWeakPassword, err)
		}
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return domain.PublicProfile{}, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return domain.PublicProfile{}, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.PublicProfile{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         parsedRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.PublicProfile{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(parsedRole)),
	)

	return user.Profile(), nil
}

// Login checks credentials, issues a session token, and then attempts the
// user-login event fan-out. The committed local outcome (the session) is
// never rolled back when the fan-out fails; the broker error is reported
// alongside the result for the transport layer to surface as it sees fit.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(domain.Principal{ID: user.ID, Role: user.Role})
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	result := LoginResult{Token: token, User: user.Profile()}

	// Phase two: best-effort fan-out, after the session is committed.
	if err := s.events.PublishLogin(ctx, domain.LoginEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		Timestamp: s.now(),
	}); err != nil {
		s.logger.Warn("login event fan-out failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		result.FanOutErr = err
	}

	return result, nil
}

// Logout verifies the presented token and returns. Logout is advisory: the
// token is destroyed client-side and never revoked server-side.
func (s *AuthService) Logout(_ context.Context, token string) error {
	_, err := s.tokens.Resolve(token)
	return err
}

// Profile returns the public projection of the authenticated account.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.PublicProfile{}, ErrUserNotFound
		}
		return domain.PublicProfile{}, fmt.Errorf("lookup user: %w", err)
	}
	return user.Profile(), nil
}

// UpdateProfile updates the account's mutable profile fields, falling back to
// the stored values when a field is left blank.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, fullName, email string) (domain.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.PublicProfile{}, ErrUserNotFound
		}
		return domain.PublicProfile{}, fmt.Errorf("lookup user: %w", err)
	}

	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" {
		fullName = user.FullName
	}
	if email == "" {
		email = user.Email
	}

	if err := s.users.UpdateProfile(ctx, userID, fullName, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.PublicProfile{}, ErrUserNotFound
		}
		return domain.PublicProfile{}, fmt.Errorf("update profile: %w", err)
	}

	user.FullName = fullName
	user.Email = email
	return user.Profile(), nil
}

// ChangePassword replaces the account credential after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	match, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return ErrInvalidCredentials
	}

	if s.policy != nil {
		if err := s.policy.Validate(newPassword, user.Email, user.FullName); err != nil {
			return fmt.Errorf("%w: %v", ErrWeakPassword, err)
		}
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// ListClients returns all client accounts.
func (s *AuthService) ListClients(ctx context.Context) ([]domain.PublicProfile, error) {
	return s.listByRole(ctx, domain.RoleClient)
}

// ListAdmins returns all admin accounts.
func (s *AuthService) ListAdmins(ctx context.Context) ([]domain.PublicProfile, error) {
	return s.listByRole(ctx, domain.RoleAdmin)
}

func (s *AuthService) listByRole(ctx context.Context, role domain.Role) ([]domain.PublicProfile, error) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list %s users: %w", role, err)
	}

	profiles := make([]domain.PublicProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile())
	}
	return profiles, nil
}
