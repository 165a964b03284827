package service

import (
	"context"
	"earnings-tracker/config"
	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/internal/repository"
	"earnings-tracker/pkg/logger"
	"fmt"
)

type UserService interface {
	FindAll(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*model.User, error)
	Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id uint) error
	BootstrapAdmin(ctx context.Context) error
}

type userService struct {
	cfg        *config.Config
	log        *logger.Logger
	userRepo   repository.UserRepository
	bcryptCost int
}

func NewUserService(cfg *config.Config, log *logger.Logger, userRepo repository.UserRepository) *userService {
	return &userService{
		cfg:        cfg,
		log:        log,
		userRepo:   userRepo,
		bcryptCost: bcryptCost(cfg),
	}
}

func (s *userService) FindAll(ctx context.Context) ([]model.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user with this email already exists", dto.ErrConflict)
	}

	hash, err := hashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleWorker
	}
	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "User created", logger.UintField("user_id", user.ID), logger.StringField("role", user.Role))
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, dto.ErrNotFound
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.userRepo.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: user with this email already exists", dto.ErrConflict)
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "User updated", logger.UintField("user_id", user.ID))
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "User deleted", logger.UintField("user_id", id))
	return nil
}
