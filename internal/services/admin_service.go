package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/CityQuest-2025/quest-service/internal/models"
	"github.com/CityQuest-2025/quest-service/internal/repositories"
	"github.com/CityQuest-2025/quest-service/internal/utils"
)

type AdminService interface {
	// EnsureDefault creates the admin account on first boot when it does not
	// exist yet.
	EnsureDefault(ctx context.Context, username, password string) error
	// Verify checks a basic-auth credential pair against the stored hash.
	Verify(ctx context.Context, username, password string) (bool, error)
	ChangePassword(ctx context.Context, username, newPassword string) error
}

type adminService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewAdminService(repo repositories.Repository, logger utils.Logger) AdminService {
	return &adminService{repo: repo, logger: logger}
}

func (s *adminService) EnsureDefault(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return NewValidationError("username", "is required", username)
	}
	existing, err := s.repo.Admins().GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("admin lookup failed: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password failed: %w", err)
	}
	if err := s.repo.Admins().Create(ctx, &models.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
	}); err != nil {
		return fmt.Errorf("creating admin failed: %w", err)
	}
	s.logger.Info("default admin created", "username", username)
	return nil
}

func (s *adminService) Verify(ctx context.Context, username, password string) (bool, error) {
	admin, err := s.repo.Admins().GetByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("admin lookup failed: %w", err)
	}
	if admin == nil {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil, nil
}

func (s *adminService) ChangePassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < 8 {
		return NewValidationError("password", "must be at least 8 characters", nil)
	}
	admin, err := s.repo.Admins().GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("admin lookup failed: %w", err)
	}
	if admin == nil {
		return ErrAdminNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password failed: %w", err)
	}
	admin.PasswordHash = string(hash)
	if err := s.repo.Admins().Update(ctx, admin); err != nil {
		return fmt.Errorf("updating admin failed: %w", err)
	}
	s.logger.Info("admin password changed", "username", username)
	return nil
}
