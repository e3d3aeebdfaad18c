package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/types"
)

// UserService provides registration and login.
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// Register creates a user with a hashed password. A duplicate phone number,
// email or roll number yields db.ErrDuplicate.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	if err := s.passwordConfig.CheckPassword(req.Password); err != nil {
		return nil, &ErrValidation{Field: "password", Message: sentence(err.Error())}
	}

	hash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.db.CreateUser(ctx, db.CreateUserInput{
		Name:              strings.TrimSpace(req.Name),
		Email:             strings.TrimSpace(req.Email),
		PhoneNumber:       strings.TrimSpace(req.PhoneNumber),
		PasswordHash:      hash,
		Role:              req.Role,
		RollNumber:        strings.TrimSpace(req.RollNumber),
		PreferredLanguage: req.PreferredLanguage,
		Location:          req.Location,
		EducationLevel:    req.EducationLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user.Public(), nil
}

// Login checks the identifier and password and stamps the login time.
// Unknown identifiers and wrong passwords return the same error.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	identifier := strings.TrimSpace(req.Identifier)
	user, err := s.db.FindUserForLogin(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	if err := s.db.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to record login time: %w", err)
	}
	refreshed, err := s.db.GetUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	if refreshed != nil {
		user = refreshed
	}
	return user.Public(), nil
}
