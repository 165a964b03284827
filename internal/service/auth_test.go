package service

import (
	"context"
	"testing"

	"earnings-tracker/internal/dto"
	"earnings-tracker/internal/model"
	"earnings-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	users := newFakeUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &model.User{Email: "admin@example.com", PasswordHash: string(hash), Role: model.RoleAdmin}))

	svc := NewAuthService(testConfig(), logger.NewNop(), users, fakeSigner{})

	tests := []struct {
		name      string
		email     string
		password  string
		wantToken string
		wantErr   error
	}{
		{name: "valid", email: "admin@example.com", password: "s3cret", wantToken: "1|admin@example.com|admin"},
		{name: "wrong password", email: "admin@example.com", password: "nope", wantErr: dto.ErrUnauthorized},
		{name: "unknown email", email: "ghost@example.com", password: "s3cret", wantErr: dto.ErrUnauthorized},
		{name: "email is exact", email: "ADMIN@example.com", password: "s3cret", wantErr: dto.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err, "both failures return the identical error")
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}
