package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netauto/internal/model"
	"netauto/internal/pkg/jwtutil"
	"netauto/internal/repository"
)

func TestRegisterFirstUserIsAdmin(t *testing.T) {
	svc := NewAuthService(repository.NewUserRepository(newTestDB(t)), "secret", time.Hour)

	first, err := svc.Register(RegisterInput{Username: "netops", Email: "netops@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, first.User.Role)
	assert.NotEqual(t, "hunter22", first.User.PasswordHash)

	claims, err := jwtutil.ParseToken("secret", first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	second, err := svc.Register(RegisterInput{Username: "viewer", Email: "viewer@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleViewer, second.User.Role)

	_, err = svc.Register(RegisterInput{Username: "netops", Email: "other@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrUsernameExists)
	_, err = svc.Register(RegisterInput{Username: "other", Email: "netops@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(repository.NewUserRepository(newTestDB(t)), "secret", time.Hour)
	_, err := svc.Register(RegisterInput{Username: "netops", Email: "netops@example.com", Password: "hunter22"})
	require.NoError(t, err)

	res, err := svc.Login(LoginInput{Username: "netops", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(LoginInput{Username: "netops", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredential)
	_, err = svc.Login(LoginInput{Username: "ghost", Password: "hunter22"})
	require.ErrorIs(t, err, ErrInvalidCredential)
	_, err = svc.Login(LoginInput{})
	require.ErrorIs(t, err, ErrInvalidInput)

	user, err := svc.GetUserByID(res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "netops", user.Username)
}
