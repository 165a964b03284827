package service

import (
	"context"
	"earnings-tracker/internal/model"
	"earnings-tracker/pkg/logger"
)

// BootstrapAdmin creates the configured admin account when no admin exists.
// It never modifies an existing user.
func (s *userService) BootstrapAdmin(ctx context.Context) error {
	exists, err := s.userRepo.ExistsByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if exists {
		s.log.DebugContext(ctx, "Admin already exists, skipping bootstrap")
		return nil
	}

	email, password := s.cfg.Auth.AdminEmail, s.cfg.Auth.AdminPassword
	if email == "" || password == "" {
		s.log.WarnContext(ctx, "No admin exists and no admin credentials are configured")
		return nil
	}

	taken, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken != nil {
		s.log.WarnContext(ctx, "Configured admin email belongs to a non-admin user, skipping bootstrap",
			logger.UintField("user_id", taken.ID),
		)
		return nil
	}

	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	admin := &model.User{Email: email, PasswordHash: hash, Role: model.RoleAdmin}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "Admin user bootstrapped", logger.UintField("user_id", admin.ID))
	return nil
}
