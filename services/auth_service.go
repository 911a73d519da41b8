package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/Dosada05/rank-ladder/repositories"
	"golang.org/x/crypto/bcrypt"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidationFailed)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, translateStorageError(fmt.Errorf("failed to find user by email: %w", err))
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}
