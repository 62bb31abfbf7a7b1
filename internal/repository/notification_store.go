package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
)

// NotificationStore persists dispatch work records and their terminal
// status. Terminal writes are plain single-row updates; the document is
// never moved back to pending.
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Get returns the notification or nil when it does not exist.
func (s *NotificationStore) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkSent records a successful dispatch with the provider message id.
func (s *NotificationStore) MarkSent(ctx context.Context, id, messageID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.StatusSent,
			"message_id": messageID,
			"sent_at":    at,
		}).Error
}

// MarkFailed records a failed dispatch with the error detail.
func (s *NotificationStore) MarkFailed(ctx context.Context, id, detail string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.StatusFailed,
			"error_detail": detail,
			"failed_at":    at,
		}).Error
}

// DeleteOlderThan removes notifications created before the cutoff and
// returns how many were removed. Used by the retention sweep only.
func (s *NotificationStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
