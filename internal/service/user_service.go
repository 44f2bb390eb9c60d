package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// AgentCache stores the active support agent list between reads.
type AgentCache interface {
	// Get returns the cached list and the cache version it was read at.
	Get(ctx context.Context) (agents []domain.User, version int64, ok bool, err error)
	// Set stores agents unless the cache was invalidated after version.
	Set(ctx context.Context, version int64, agents []domain.User) error
	Invalidate(ctx context.Context) error
}

// UserService manages accounts on behalf of administrators.
type UserService struct {
	users      repository.UserRepository
	agents     AgentCache
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	AgentCache AgentCache
	Logger     *zap.Logger
}

// UserCreateInput describes an administrator-created account.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Status   domain.UserStatus
}

// UserUpdateInput is a partial update; nil fields are left unchanged.
type UserUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
	Status   *domain.UserStatus
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		agents:     deps.AgentCache,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// ListUsers returns every account ordered by id.
func (s *UserService) ListUsers(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	if err := s.authorize(actor, auth.ActionListUsers); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUser returns a single account.
func (s *UserService) GetUser(ctx context.Context, actor domain.Identity, id int64) (*domain.User, error) {
	if err := s.authorize(actor, auth.ActionViewUser); err != nil {
		return nil, err
	}
	return s.loadUser(ctx, id)
}

// CreateUser creates an account with any role. Role defaults to Usuario and
// status to Activo.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Identity, input UserCreateInput) (*domain.User, error) {
	if err := s.authorize(actor, auth.ActionCreateUser); err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:   strings.TrimSpace(input.Name),
		Email:  normalizeEmail(input.Email),
		Role:   input.Role,
		Status: input.Status,
	}
	if user.Role == "" {
		user.Role = domain.RoleUsuario
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	if user.Name == "" || user.Email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("nombre, correo and password are required", nil)
	}
	if err := validateAccountFields(user.Name, user.Email); err != nil {
		return nil, err
	}
	if err := validateRoleStatus(user.Role, user.Status); err != nil {
		return nil, err
	}

	if err := createAccount(ctx, s.users, s.bcryptCost, user, input.Password); err != nil {
		return nil, err
	}
	s.invalidateAgents(ctx)
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("rol", string(user.Role)))
	return user, nil
}

// UpdateUser applies a partial update. A new password is stored as a fresh hash.
func (s *UserService) UpdateUser(ctx context.Context, actor domain.Identity, id int64, input UserUpdateInput) (*domain.User, error) {
	if err := s.authorize(actor, auth.ActionUpdateUser); err != nil {
		return nil, err
	}
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != user.Email {
			existing, err := s.users.GetByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return nil, emailConflict(email)
			}
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
		}
		user.Email = email
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Status != nil {
		user.Status = *input.Status
	}
	if input.Password != nil {
		hash, err := hashPassword("password", *input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		case apperrors.IsUniqueViolation(err):
			return nil, emailConflict(user.Email)
		}
		return nil, apperrors.MapError(err)
	}
	s.invalidateAgents(ctx)
	return user, nil
}

// DeleteUser removes an account. Accounts that still own tickets cannot be
// deleted; tickets assigned to the account become unassigned.
func (s *UserService) DeleteUser(ctx context.Context, actor domain.Identity, id int64) error {
	if err := s.authorize(actor, auth.ActionDeleteUser); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		case apperrors.IsForeignKeyViolation(err):
			return apperrors.NewConflict("user still has tickets they created", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	s.invalidateAgents(ctx)
	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

// ListSupportAgents returns active Soporte accounts ordered by name. The
// result is served from the agent cache when one is configured.
func (s *UserService) ListSupportAgents(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	if err := s.authorize(actor, auth.ActionListSupportAgents); err != nil {
		return nil, err
	}

	var version int64
	fill := false
	if s.agents != nil {
		agents, v, ok, err := s.agents.Get(ctx)
		switch {
		case err != nil:
			s.logger.Warn("agent cache read failed", zap.Error(err))
		case ok:
			return agents, nil
		default:
			version, fill = v, true
		}
	}

	agents, err := s.users.ListActiveSupportAgents(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if fill {
		if err := s.agents.Set(ctx, version, agents); err != nil {
			s.logger.Warn("agent cache write failed", zap.Error(err))
		}
	}
	return agents, nil
}

func (s *UserService) authorize(actor domain.Identity, action auth.Action) error {
	if !auth.Authorize(actor, action, auth.Resource{}) {
		return apperrors.NewForbidden("user management requires Admin")
	}
	return nil
}

func (s *UserService) loadUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *UserService) invalidateAgents(ctx context.Context) {
	if s.agents == nil {
		return
	}
	if err := s.agents.Invalidate(ctx); err != nil {
		s.logger.Warn("agent cache invalidation failed", zap.Error(err))
	}
}

func validateRoleStatus(role domain.Role, status domain.UserStatus) error {
	if !role.Valid() {
		return apperrors.NewValidationError("invalid rol", map[string]any{
			"rol":     string(role),
			"allowed": domain.Roles(),
		})
	}
	if !status.Valid() {
		return apperrors.NewValidationError("invalid estado", map[string]any{
			"estado":  string(status),
			"allowed": []domain.UserStatus{domain.UserStatusActive, domain.UserStatusInactive},
		})
	}
	return nil
}

func validateUpdate(input UserUpdateInput) error {
	if input.Name == nil && input.Email == nil && input.Password == nil && input.Role == nil && input.Status == nil {
		return apperrors.NewValidationError("no fields to update", nil)
	}
	empty := map[string]any{}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		empty["nombre"] = "must not be empty"
	}
	if input.Email != nil && strings.TrimSpace(*input.Email) == "" {
		empty["correo"] = "must not be empty"
	}
	if input.Password != nil && *input.Password == "" {
		empty["password"] = "must not be empty"
	}
	if len(empty) > 0 {
		return apperrors.NewValidationError("invalid fields", empty)
	}
	var name, email string
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email = normalizeEmail(*input.Email)
	}
	if err := validateAccountFields(name, email); err != nil {
		return err
	}

	role := domain.RoleUsuario
	if input.Role != nil {
		role = *input.Role
	}
	status := domain.UserStatusActive
	if input.Status != nil {
		status = *input.Status
	}
	return validateRoleStatus(role, status)
}
