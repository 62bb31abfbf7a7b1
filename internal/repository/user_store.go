package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
)

// UserStore reads recipient profiles. The only write the dispatcher is
// allowed is clearing a device token the provider reported invalid.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Get returns the user or nil when the profile does not exist.
func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ClearDeviceToken removes the stored token so future dispatches
// short-circuit. Clearing an already-empty token is a no-op, so the call
// is idempotent and needs no locking against the registration flow.
func (s *UserStore) ClearDeviceToken(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("device_token", "").Error
}
