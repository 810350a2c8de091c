// Package auth manages user credentials
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paper-trader/models"
)

// StartingCash is credited to every new account.
var StartingCash = decimal.RequireFromString("10000.00")

var (
	// ErrValidation reports missing or malformed input.
	ErrValidation = errors.New("invalid input")
	// ErrConflict reports an already-taken username.
	ErrConflict = errors.New("username not available")
	// ErrBadCredentials reports a failed login. It never says which field
	// was wrong.
	ErrBadCredentials = errors.New("invalid username and/or password")
)

// Store reads and writes user credentials.
type Store struct {
	db *gorm.DB
}

// NewStore is constructor
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Register creates a user with a bcrypt hash and the starting balance.
func (s *Store) Register(ctx context.Context, username, password, confirmation string) (*models.User, error) {
	if username == "" || password == "" || confirmation == "" {
		return nil, fmt.Errorf("%w: please fill all required fields", ErrValidation)
	}
	if password != confirmation {
		return nil, fmt.Errorf("%w: password and confirmation do not match", ErrValidation)
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Hash:     string(hashed),
		Cash:     StartingCash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies a username/password pair.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: please provide username and password", ErrValidation)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return &user, nil
}

// ChangePassword replaces the stored hash after verifying the old password.
func (s *Store) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword, confirmation string) error {
	if oldPassword == "" || newPassword == "" || confirmation == "" {
		return fmt.Errorf("%w: please fill all required fields", ErrValidation)
	}
	if newPassword != confirmation {
		return fmt.Errorf("%w: new password and confirmation do not match", ErrValidation)
	}
	if newPassword == oldPassword {
		return fmt.Errorf("%w: new password can't be same as old password", ErrValidation)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: invalid old password", ErrBadCredentials)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&user).Update("hash", string(hashed)).Error
}
