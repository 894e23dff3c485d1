package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sweetshop/internal/auth"
	"github.com/spec-kit/sweetshop/internal/config"
	"github.com/spec-kit/sweetshop/internal/domain"
	"github.com/spec-kit/sweetshop/internal/repository"
)

// AuthService coordinates registration, login and token validation.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	hasher     *auth.PasswordHasher
	revoker    auth.Revoker
	allowRoles bool
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Revoker  auth.Revoker
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	revoker := deps.Revoker
	if revoker == nil {
		revoker = auth.NoopRevoker{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		hasher:     auth.NewPasswordHasher(cfg.BcryptCost),
		revoker:    revoker,
		allowRoles: cfg.AllowSelfAssignedRole,
		logger:     logger,
	}
}

// Register creates a new account. A role other than customer is accepted only
// when self-assigned roles are enabled.
func (s *AuthService) Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if role != domain.RoleCustomer && !s.allowRoles {
		return nil, domain.ErrForbidden
	}
	return s.createUser(ctx, email, password, role)
}

// CreateUser is the administrative account creation path; the caller must be an admin.
func (s *AuthService) CreateUser(ctx context.Context, actor *domain.User, email, password string, role domain.Role) (*domain.User, error) {
	if err := auth.CheckAdmin(actor); err != nil {
		return nil, err
	}
	if role == "" {
		role = domain.RoleCustomer
	}
	user, err := s.createUser(ctx, email, password, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account created by admin", zap.Int64("actor_id", actor.ID), zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	email = strings.TrimSpace(email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// FindByEmail returns the user with the given email or ErrNotFound.
func (s *AuthService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, strings.TrimSpace(email))
}

// Authenticate verifies credentials. Unknown emails and wrong passwords both
// yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken signs an access token whose subject is the user's email.
func (s *AuthService) IssueToken(user *domain.User) (domain.IssuedToken, error) {
	return s.tokenMgr.GenerateToken(user.Email)
}

// Login authenticates and issues a token in one step.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.IssuedToken, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, domain.IssuedToken{}, err
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, domain.IssuedToken{}, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Debug("user logged in", zap.Int64("user_id", user.ID))
	return user, token, nil
}

// ValidateToken resolves a bearer token to an existing user. Decode failures,
// expiry, revocation and unknown subjects all return ErrInvalidToken.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.User, *domain.TokenClaims, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, nil, domain.ErrInvalidToken
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, domain.ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrInvalidToken
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout revokes the presented token. Without a revocation backend this is a no-op
// and the token stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *domain.TokenClaims) error {
	if claims == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt)
}

// EnsureBootstrapAdmin creates the configured admin account when absent.
// An existing account with that email is left untouched.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Debug("bootstrap admin already present")
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	_, err = s.createUser(ctx, email, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return nil
	}
	return err
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
