package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/solace-app/solace/backend/internal/models"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a token subject has no account row.
var ErrUserNotFound = errors.New("user not found")

// FindUser retrieves a registered user by ID. Used by the identity resolver
// to turn a verified token subject into a participant.
func (s *Store) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return &user, nil
}

// CreateUser inserts a registered user. Account management belongs to the
// main application; this exists for the dev token endpoint and tests.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
