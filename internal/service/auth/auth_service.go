package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	authtoken "evcharge/internal/auth"
	"evcharge/internal/domain"
	"evcharge/internal/repository"
)

// ErrInvalidCredentials represents login failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService contains registration and login logic.
type AuthService struct {
	repo      repository.UserRepository
	hasher    authtoken.Hasher
	tokenizer *authtoken.TokenService
	logger    *zap.Logger
}

func NewAuthService(repo repository.UserRepository, hasher authtoken.Hasher, tokenizer *authtoken.TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// Register creates a new user and issues a token.
func (s *AuthService) Register(ctx context.Context, name, email, password, phone string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if email == "" {
		return "", nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if len(password) < 6 {
		return "", nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return "", nil, domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.tokenizer.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return token, user, nil
}

// Login authenticates a user and produces a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
