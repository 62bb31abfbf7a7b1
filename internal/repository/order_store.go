package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
)

// OrderStore covers the catalog and order records the dispatcher and the
// backfill read: listings for bundle names, chats and transactions for the
// chats-to-transactions migration.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// GetListing returns the listing or nil when it does not exist.
func (s *OrderStore) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	var l models.Listing
	err := s.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListChats returns every chat record, oldest first.
func (s *OrderStore) ListChats(ctx context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.db.WithContext(ctx).Order("created_at asc").Find(&chats).Error
	return chats, err
}

// CreateTransaction inserts a backfilled purchase record.
func (s *OrderStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return s.db.WithContext(ctx).Create(tx).Error
}

// SetActiveOrder stamps the chat with the transaction that now owns it.
func (s *OrderStore) SetActiveOrder(ctx context.Context, chatID, orderID string) error {
	return s.db.WithContext(ctx).Model(&models.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"active_order_id": orderID,
			"updated_at":      time.Now(),
		}).Error
}
