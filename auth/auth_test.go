package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"paper-trader/models"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return NewStore(db), db
}

func TestRegisterAndAuthenticate(t *testing.T) {
	store, _ := newTestStore(t)

	user, err := store.Register(context.Background(), "alice", "hunter2", "hunter2")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.Cash.Equal(StartingCash))
	assert.NotEqual(t, "hunter2", user.Hash)

	got, err := store.Authenticate(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	testTable := []struct {
		name         string
		username     string
		password     string
		confirmation string
	}{
		{name: "empty username", username: "", password: "pw", confirmation: "pw"},
		{name: "empty password", username: "alice", password: "", confirmation: "pw"},
		{name: "empty confirmation", username: "alice", password: "pw", confirmation: ""},
		{name: "mismatch", username: "alice", password: "pw", confirmation: "other"},
	}

	store, _ := newTestStore(t)
	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := store.Register(context.Background(),
				testCase.username, testCase.password, testCase.confirmation)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store, db := newTestStore(t)

	first, err := store.Register(context.Background(), "alice", "hunter2", "hunter2")
	require.NoError(t, err)

	_, err = store.Register(context.Background(), "alice", "other", "other")
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var kept models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&kept).Error)
	assert.Equal(t, first.ID, kept.ID)
}

func TestAuthenticateFailures(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Register(context.Background(), "alice", "hunter2", "hunter2")
	require.NoError(t, err)

	_, err = store.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = store.Authenticate(context.Background(), "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = store.Authenticate(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestChangePassword(t *testing.T) {
	store, _ := newTestStore(t)
	user, err := store.Register(context.Background(), "alice", "hunter2", "hunter2")
	require.NoError(t, err)

	err = store.ChangePassword(context.Background(), user.ID, "wrong", "newpw", "newpw")
	assert.ErrorIs(t, err, ErrBadCredentials)

	err = store.ChangePassword(context.Background(), user.ID, "hunter2", "hunter2", "hunter2")
	assert.ErrorIs(t, err, ErrValidation)

	err = store.ChangePassword(context.Background(), user.ID, "hunter2", "newpw", "other")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, store.ChangePassword(context.Background(), user.ID, "hunter2", "newpw", "newpw"))

	_, err = store.Authenticate(context.Background(), "alice", "hunter2")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = store.Authenticate(context.Background(), "alice", "newpw")
	assert.NoError(t, err)
}
