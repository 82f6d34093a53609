package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/mailer"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/repository"
	"github.com/bitnshop/bitnshop/internal/slug"
	"github.com/bitnshop/bitnshop/internal/utils"
	"github.com/bitnshop/bitnshop/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidResetCode      = errors.New("invalid or expired reset code")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

const resetCodeTTL = 15 * time.Minute

type AuthService struct {
	userRepo      *repository.UserRepository
	roleRepo      *repository.RoleRepository
	slugGen       *slug.Generator
	mail          mailer.Mailer
	redis         *goredis.Client
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(
	userRepo *repository.UserRepository,
	roleRepo *repository.RoleRepository,
	slugGen *slug.Generator,
	mail mailer.Mailer,
	redisClient *goredis.Client,
	jwtSecret string,
	jwtExpiration time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		roleRepo:      roleRepo,
		slugGen:       slugGen,
		mail:          mail,
		redis:         redisClient,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates a storefront account. New users always get the
// customer role; anything more is granted later by an admin.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	start := time.Now()

	logger.Log.Debug("Processing user registration",
		zap.String("username", username),
		zap.String("email", email),
	)

	// 1. Validate input
	if err := s.validateRegisterInput(username, email, password); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 2. Check if email already exists
	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existingUser != nil {
		return nil, "", ErrEmailAlreadyExists
	}

	// 3. Check if username already exists
	existingUser, err = s.userRepo.GetUserByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existingUser != nil {
		return nil, "", ErrUsernameAlreadyExists
	}

	// 4. Hash password (Argon2id)
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, "", err
	}

	// 5. Derive the user's unique slug from the username
	userSlug, err := s.slugGen.Generate(ctx, username, slug.EntityUser, nil)
	if err != nil {
		logger.Log.Error("Failed to generate user slug",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 6. Resolve the default customer role
	customerRole, err := s.roleRepo.GetRoleByName(authz.RoleCustomer)
	if err != nil {
		logger.Log.Error("Failed to look up customer role", zap.Error(err))
		return nil, "", err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		Slug:         userSlug,
		PasswordHash: hashedPassword,
		Profile:      &models.Profile{},
		Address:      &models.Address{},
	}
	if customerRole != nil {
		user.Roles = []models.Role{*customerRole}
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 7. Generate JWT token
	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	s.mail.SendWelcome(user.Email, user.Username)

	logger.Log.Info("User registered successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", username),
		zap.String("slug", userSlug),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// Login authenticates by email or username.
func (s *AuthService) Login(identifier, password string) (*models.User, string, error) {
	logger.Log.Debug("Processing user login", zap.String("identifier", identifier))

	// 1. Resolve user by email or username
	user, err := s.userRepo.GetUserByEmailOrUsername(identifier)
	if err != nil {
		logger.Log.Error("Failed to look up user",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("identifier", identifier),
		)
		return nil, "", ErrInvalidCredentials
	}

	// 2. Verify password
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return nil, "", err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("identifier", identifier),
			zap.Uint("user_id", user.ID),
		)
		return nil, "", ErrInvalidCredentials
	}

	// 3. Generate JWT token
	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, token, nil
}

// RequestPasswordReset issues a short-lived reset code. A missing
// account is not an error to the caller (no account enumeration).
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		logger.Log.Debug("Password reset requested for unknown email",
			zap.String("email", email),
		)
		return nil
	}

	code, err := sixDigitCode()
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, resetCodeKey(email), code, resetCodeTTL).Err(); err != nil {
		logger.Log.Error("Failed to store reset code",
			zap.String("email", email),
			zap.Error(err),
		)
		return err
	}

	s.mail.SendPasswordReset(user.Email, user.Username, code)

	logger.Log.Info("Password reset code issued", zap.Uint("user_id", user.ID))
	return nil
}

// ResetPassword validates the code and replaces the user's credential.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 8 || len(newPassword) > 128 {
		return errors.New("password must be between 8 and 128 characters")
	}

	stored, err := s.redis.Get(ctx, resetCodeKey(email)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ErrInvalidResetCode
		}
		return err
	}
	if stored != code {
		logger.Log.Warn("Password reset attempted with wrong code",
			zap.String("email", email),
		)
		return ErrInvalidResetCode
	}

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidResetCode
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed

	if err := s.userRepo.UpdateUser(user); err != nil {
		return err
	}

	// Single use: burn the code.
	_ = s.redis.Del(ctx, resetCodeKey(email)).Err()

	logger.Log.Info("Password reset completed", zap.Uint("user_id", user.ID))
	return nil
}

func (s *AuthService) validateRegisterInput(username, email, password string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return errors.New("username must be at most 50 characters")
	}

	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	if len(email) > 255 {
		return errors.New("email too long")
	}

	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return errors.New("password too long")
	}

	return nil
}

func resetCodeKey(email string) string {
	return "pwdreset:" + email
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
