package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitnshop/bitnshop/internal/audit"
	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/mailer"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/repository"
	"github.com/bitnshop/bitnshop/internal/slug"
	"github.com/bitnshop/bitnshop/internal/utils"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUnknownRole  = errors.New("unknown role")
)

// UserService covers the cpanel's user management: admins create
// accounts with a chosen role, adjust role assignments and delete
// accounts.
type UserService struct {
	userRepo *repository.UserRepository
	roleRepo *repository.RoleRepository
	slugGen  *slug.Generator
	mail     mailer.Mailer
	trail    *audit.Trail
}

func NewUserService(
	userRepo *repository.UserRepository,
	roleRepo *repository.RoleRepository,
	slugGen *slug.Generator,
	mail mailer.Mailer,
	trail *audit.Trail,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		slugGen:  slugGen,
		mail:     mail,
		trail:    trail,
	}
}

// CreateUserInput is the admin "add user" form.
type CreateUserInput struct {
	Username  string
	Email     string
	Firstname string
	Lastname  string
	Password  string
	Role      authz.RoleName
}

// ListUsers returns one page of accounts for the cpanel user table.
func (s *UserService) ListUsers(page, perPage int) ([]*models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return s.userRepo.ListUsers(page, perPage)
}

func (s *UserService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateUser provisions an account on behalf of an admin and emails the
// login details to the new user.
func (s *UserService) CreateUser(ctx context.Context, actorID uint, input CreateUserInput) (*models.User, error) {
	logger.Log.Info("Admin creating user",
		zap.Uint("actor_id", actorID),
		zap.String("username", input.Username),
		zap.String("role", string(input.Role)),
	)

	if !input.Role.Valid() {
		return nil, ErrUnknownRole
	}

	// Uniqueness checks mirror self-registration.
	existing, err := s.userRepo.GetUserByEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}
	existing, err = s.userRepo.GetUserByUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameAlreadyExists
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	userSlug, err := s.slugGen.Generate(ctx, input.Username, slug.EntityUser, nil)
	if err != nil {
		return nil, err
	}

	// Fall back to customer when the requested role row is missing, the
	// same way the original seeding treats customer as the floor.
	role, err := s.roleRepo.GetRoleByName(input.Role)
	if err != nil {
		return nil, err
	}
	if role == nil {
		role, err = s.roleRepo.GetRoleByName(authz.RoleCustomer)
		if err != nil {
			return nil, err
		}
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		Slug:         userSlug,
		PasswordHash: hashed,
		Profile: &models.Profile{
			Firstname: input.Firstname,
			Lastname:  input.Lastname,
		},
		Address: &models.Address{},
	}
	if role != nil {
		user.Roles = []models.Role{*role}
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user",
			zap.String("username", input.Username),
			zap.Error(err),
		)
		return nil, err
	}

	s.mail.SendAccountCredentials(user.Email, user.Username, input.Password)

	s.record(audit.Entry{
		Action:  audit.ActionUserCreated,
		ActorID: actorID,
		Subject: fmt.Sprintf("user:%d", user.ID),
		Detail:  "role " + string(input.Role),
	})

	logger.Log.Info("User created by admin",
		zap.Uint("actor_id", actorID),
		zap.Uint("user_id", user.ID),
	)

	return user, nil
}

// ReplaceRoles swaps a user's role assignments for the given set.
func (s *UserService) ReplaceRoles(actorID, userID uint, roleNames []authz.RoleName) (*models.User, error) {
	for _, name := range roleNames {
		if !name.Valid() {
			return nil, ErrUnknownRole
		}
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	roles, err := s.roleRepo.GetRolesByNames(roleNames)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.ReplaceRoles(user, roles); err != nil {
		logger.Log.Error("Failed to replace roles",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	user.Roles = roles

	s.record(audit.Entry{
		Action:  audit.ActionRolesChanged,
		ActorID: actorID,
		Subject: fmt.Sprintf("user:%d", userID),
		Detail:  fmt.Sprintf("roles now %v", roleNames),
	})

	logger.Log.Info("User roles replaced",
		zap.Uint("actor_id", actorID),
		zap.Uint("user_id", userID),
		zap.Int("role_count", len(roles)),
	)

	return user, nil
}

// DeleteUser removes an account. Only the user's own records go: the
// role-assignment join rows are cleared, shared Role rows survive.
func (s *UserService) DeleteUser(actorID, userID uint) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.DeleteUser(user); err != nil {
		logger.Log.Error("Failed to delete user",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	s.record(audit.Entry{
		Action:  audit.ActionUserDeleted,
		ActorID: actorID,
		Subject: fmt.Sprintf("user:%d", userID),
	})

	logger.Log.Info("User deleted",
		zap.Uint("actor_id", actorID),
		zap.Uint("user_id", userID),
	)

	return nil
}

// ListRoles exposes the role table for the cpanel role picker.
func (s *UserService) ListRoles() ([]models.Role, error) {
	return s.roleRepo.ListRoles()
}

func (s *UserService) record(entry audit.Entry) {
	if s.trail == nil {
		return
	}
	if err := s.trail.Record(entry); err != nil {
		logger.Log.Warn("Failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}
