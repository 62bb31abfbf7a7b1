package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
)

// Store is the slice of persistence the backfill needs.
type Store interface {
	ListChats(ctx context.Context) ([]models.Chat, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	SetActiveOrder(ctx context.Context, chatID, orderID string) error
}

// Result reports what the backfill did.
type Result struct {
	Migrated int
	Skipped  int
}

// Run backfills a transaction record for every legacy chat that has none,
// then stamps the chat with the new order id. Chats that already carry an
// active order are skipped, so re-running is safe.
func Run(ctx context.Context, store Store, logger *slog.Logger) (Result, error) {
	var res Result

	chats, err := store.ListChats(ctx)
	if err != nil {
		return res, fmt.Errorf("migrate: list chats: %w", err)
	}
	logger.Info("starting chats to transactions backfill", slog.Int("chats", len(chats)))

	for i := range chats {
		chat := &chats[i]
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if chat.ActiveOrderID != "" {
			res.Skipped++
			continue
		}

		tx := transactionFromChat(chat)
		fillBundleFields(ctx, store, chat.BundleID, tx, logger)

		if err := store.CreateTransaction(ctx, tx); err != nil {
			return res, fmt.Errorf("migrate: create transaction for chat %s: %w", chat.ID, err)
		}
		if err := store.SetActiveOrder(ctx, chat.ID, tx.ID); err != nil {
			return res, fmt.Errorf("migrate: stamp chat %s: %w", chat.ID, err)
		}

		logger.Debug("migrated chat",
			slog.String("chat_id", chat.ID),
			slog.String("transaction_id", tx.ID))
		res.Migrated++
	}

	logger.Info("backfill completed",
		slog.Int("migrated", res.Migrated),
		slog.Int("skipped", res.Skipped))
	return res, nil
}

func transactionFromChat(chat *models.Chat) *models.Transaction {
	status := chat.Status
	if status == "" {
		status = models.StatusPending
	}
	createdAt := chat.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := chat.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	return &models.Transaction{
		ID:              uuid.NewString(),
		UserID:          chat.BuyerID,
		Type:            "bundle_purchase",
		Status:          status,
		BundleID:        chat.BundleID,
		RecipientNumber: chat.RecipientNumber,
		Provider:        "unknown",
		ChatID:          chat.ID,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// fillBundleFields copies listing details onto the transaction when the
// bundle still exists; a missing listing is not an error.
func fillBundleFields(ctx context.Context, store Store, bundleID string, tx *models.Transaction, logger *slog.Logger) {
	if bundleID == "" {
		return
	}
	listing, err := store.GetListing(ctx, bundleID)
	if err != nil {
		logger.Warn("could not fetch bundle data",
			slog.String("bundle_id", bundleID), slog.Any("error", err))
		return
	}
	if listing == nil {
		return
	}
	tx.BundleName = listing.Name
	tx.DataAmount = listing.DataAmount
	tx.Validity = listing.Validity
	tx.Amount = listing.Price
}
