package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// ErrInvalidCredentials is returned for every failed login, whatever the cause.
var ErrInvalidCredentials = apperrors.NewUnauthorized("invalid credentials")

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// RegisterInput describes a self-registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	tokenMgr, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tokenMgr,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}, nil
}

// Register creates a new Usuario account. Self-registration never grants
// another role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("nombre, correo and password are required", nil)
	}
	if err := validateAccountFields(name, email); err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:   name,
		Email:  email,
		Role:   domain.RoleUsuario,
		Status: domain.UserStatusActive,
	}
	if err := s.createUser(ctx, user, input.Password); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login authenticates by email and password and issues a session token.
// Unknown email, inactive account and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("correo and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Spend the same bcrypt work as a real comparison.
			_ = auth.ComparePassword(s.dummyPasswordHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, actor domain.Identity, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperrors.NewValidationError("current_password and new_password are required", nil)
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("account no longer exists")
		}
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := hashPassword("new_password", newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// EnsureAdmin creates an Admin account when email is not yet registered.
// An existing account is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, apperrors.NewValidationError("bootstrap admin email and password are required", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	if strings.TrimSpace(name) == "" {
		name = "Administrador"
	}
	user := &domain.User{
		Name:   strings.TrimSpace(name),
		Email:  email,
		Role:   domain.RoleAdmin,
		Status: domain.UserStatusActive,
	}
	if err := s.createUser(ctx, user, password); err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("bootstrap admin created", zap.Int64("user_id", user.ID))
	return true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// createUser checks email uniqueness, hashes the password and persists user.
func (s *AuthService) createUser(ctx context.Context, user *domain.User, password string) error {
	return createAccount(ctx, s.users, s.bcryptCost, user, password)
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("support-desk-timing-equalizer", s.bcryptCost)
	})
	return s.dummyHash
}

func createAccount(ctx context.Context, users repository.UserRepository, cost int, user *domain.User, password string) error {
	if _, err := users.GetByEmail(ctx, user.Email); err == nil {
		return emailConflict(user.Email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	hash, err := hashPassword("password", password, cost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return emailConflict(user.Email)
		}
		return apperrors.MapError(err)
	}
	return nil
}

func emailConflict(email string) error {
	return apperrors.NewConflict("correo already registered", map[string]any{"correo": email})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
