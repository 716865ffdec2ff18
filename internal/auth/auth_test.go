package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
)

func newTestService(t *testing.T, cfg config.Auth) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	return NewService(db, zap.NewNop(), cfg)
}

func defaultAuthConfig() config.Auth {
	return config.Auth{
		BcryptCost:      bcryptCostForTests,
		LoginRateLimit:  100,
		LoginRateBurst:  100,
		SessionLifetime: 60,
	}
}

// MinCost keeps the hashing fast in tests.
const bcryptCostForTests = 4

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t, defaultAuthConfig())
	ctx := context.Background()

	user, err := svc.Register(ctx, "trader1", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	token, ownerID, err := svc.Login(ctx, "trader1", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, ownerID)

	resolved, ok := svc.Resolve(token)
	assert.True(t, ok)
	assert.Equal(t, user.ID, resolved)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestService(t, defaultAuthConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "trader1", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "trader1", "different")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t, defaultAuthConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "trader1", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "trader1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_RateLimited(t *testing.T) {
	cfg := defaultAuthConfig()
	cfg.LoginRateLimit = 0.001
	cfg.LoginRateBurst = 2
	svc := newTestService(t, cfg)
	ctx := context.Background()

	_, err := svc.Register(ctx, "trader1", "hunter2hunter2")
	require.NoError(t, err)

	// Burst allows two attempts, the third must be throttled.
	_, _, err = svc.Login(ctx, "trader1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "trader1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "trader1", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrRateLimited)

	// The limit is per username, not global.
	_, err = svc.Register(ctx, "trader2", "hunter2hunter2")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "trader2", "hunter2hunter2")
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	svc := newTestService(t, defaultAuthConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "trader1", "hunter2hunter2")
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "trader1", "hunter2hunter2")
	require.NoError(t, err)

	svc.Logout(token)
	_, ok := svc.Resolve(token)
	assert.False(t, ok)
}
