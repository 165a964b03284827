package service

import (
	"context"
	"earnings-tracker/config"
	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/repository"
	"earnings-tracker/pkg/logger"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// TokenSigner issues access tokens for an authenticated user.
type TokenSigner interface {
	Sign(userID uint, email, role string) (string, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	log        *logger.Logger
	userRepo   repository.UserRepository
	signer     TokenSigner
	bcryptCost int
	dummyOnce  sync.Once
	dummyHash  []byte
}

func NewAuthService(cfg *config.Config, log *logger.Logger, userRepo repository.UserRepository, signer TokenSigner) *authService {
	return &authService{
		log:        log,
		userRepo:   userRepo,
		signer:     signer,
		bcryptCost: bcryptCost(cfg),
	}
}

// Login returns dto.ErrUnauthorized for both an unknown email and a wrong
// password. An unknown email still pays for one bcrypt comparison.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		s.log.InfoContext(ctx, "Login rejected")
		return "", dto.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.WarnContext(ctx, "Stored password hash is unusable", logger.UintField("user_id", user.ID), logger.ErrorField(err))
		}
		s.log.InfoContext(ctx, "Login rejected")
		return "", dto.ErrUnauthorized
	}

	token, err := s.signer.Sign(user.ID, user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	s.log.InfoContext(ctx, "Login succeeded", logger.UintField("user_id", user.ID), logger.StringField("role", user.Role))
	return token, nil
}

func (s *authService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
		if err != nil {
			s.log.Warn("Failed to prepare dummy password hash", logger.ErrorField(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func bcryptCost(cfg *config.Config) int {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cfg.Auth.BcryptCost
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
